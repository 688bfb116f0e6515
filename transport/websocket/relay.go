package websocket

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skyshot-game/skyshot/game/protocol"
	"github.com/skyshot-game/skyshot/game/room"
	"github.com/skyshot-game/skyshot/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from arbitrary origins in development.
		// TODO: Configure this for production
		return true
	},
}

// frame is one inbound message paired with the connection it arrived on.
type frame struct {
	client *Client
	data   []byte
}

// Relay assigns client identities, tracks room membership through the
// injected registry, and relays game traffic between room members.
type Relay struct {
	registry *room.Registry

	// Registered connections by client id. Owned by the run loop.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan frame

	// Admin operations (room close) executed on the run loop so they
	// mutate the connection set safely.
	ops chan func()

	startedAt time.Time
	connCount atomic.Int64
	relayed   atomic.Uint64
}

// NewRelay creates a relay around an explicitly constructed room registry.
func NewRelay(registry *room.Registry) *Relay {
	return &Relay{
		registry:   registry,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan frame, 64),
		ops:        make(chan func()),
		startedAt:  time.Now(),
	}
}

// Run starts the relay's event loop. All connection-set and room-table
// mutation happens here.
func (r *Relay) Run() {
	for {
		select {
		case client := <-r.register:
			r.registerClient(client)

		case client := <-r.unregister:
			r.unregisterClient(client)

		case f := <-r.inbound:
			r.handleFrame(f.client, f.data)

		case op := <-r.ops:
			op()
		}
	}
}

// ServeWS upgrades an HTTP request, assigns a fresh client identity, and
// starts the connection's pumps.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[RELAY] upgrade failed: %v", err)
		return
	}

	client := &Client{
		relay: r,
		conn:  conn,
		send:  make(chan []byte, 256),
		id:    uuid.NewString(),
	}

	r.register <- client

	go client.writePump()
	go client.readPump()
}

// registerClient adds the connection and assigns its identity.
func (r *Relay) registerClient(c *Client) {
	r.clients[c.id] = c
	r.connCount.Add(1)

	r.send(c, protocol.Init{
		Envelope: protocol.Envelope{Type: protocol.TypeInit},
		ID:       c.id,
	})
	log.Printf("[RELAY] client %s connected (total: %d)", c.id, len(r.clients))
}

// unregisterClient removes the connection, leaves its room, and notifies
// the remaining members.
func (r *Relay) unregisterClient(c *Client) {
	if _, ok := r.clients[c.id]; !ok {
		return
	}
	delete(r.clients, c.id)
	r.connCount.Add(-1)
	close(c.send)

	snap, newHost, removed, err := r.registry.Leave(c.id)
	if err != nil {
		// Not in a room; nothing to announce.
		log.Printf("[RELAY] client %s disconnected", c.id)
		return
	}
	if removed {
		log.Printf("[ROOM] %s deleted (last member %s left)", snap.Code, c.id)
		return
	}
	r.notifyMembers(snap.Members, protocol.MemberNotice{
		Envelope: protocol.Envelope{Type: protocol.TypePlayerLeft, RoomCode: snap.Code},
		ID:       c.id,
	})
	if newHost != "" {
		r.notifyMembers(snap.Members, protocol.MemberNotice{
			Envelope: protocol.Envelope{Type: protocol.TypeHostChanged, RoomCode: snap.Code},
			ID:       newHost,
		})
	}
	log.Printf("[ROOM] %s: %s left (remaining: %d)", snap.Code, c.id, len(snap.Members))
}

// handleFrame demultiplexes one inbound frame. Only room-lifecycle types
// are interpreted; everything else is relayed opaquely.
func (r *Relay) handleFrame(c *Client, data []byte) {
	env, err := protocol.PeekEnvelope(data)
	if err != nil {
		log.Printf("[RELAY] drop malformed frame from %s: %v", c.id, err)
		return
	}

	switch env.Type {
	case protocol.TypeHost:
		r.handleHost(c, env)
	case protocol.TypeJoin:
		r.handleJoin(c, env)
	case protocol.TypeAutoJoin:
		r.handleAutoJoin(c)
	case protocol.TypeLeave:
		r.handleLeave(c)
	default:
		r.relayFrame(c, env, data)
	}
}

func (r *Relay) handleHost(c *Client, env protocol.Envelope) {
	snap, err := r.registry.Host(c.id, env.RoomCode)
	if err != nil {
		r.sendError(c, err)
		return
	}
	r.send(c, protocol.RoomConfirm{
		Envelope: protocol.Envelope{Type: protocol.TypeHostConfirm, RoomCode: snap.Code},
		Members:  []string{},
		HostID:   snap.HostID,
	})
	log.Printf("[ROOM] %s created by %s", snap.Code, c.id)
}

func (r *Relay) handleJoin(c *Client, env protocol.Envelope) {
	snap, existing, err := r.registry.Join(c.id, env.RoomCode)
	if err != nil {
		r.sendError(c, err)
		return
	}
	r.send(c, protocol.RoomConfirm{
		Envelope: protocol.Envelope{Type: protocol.TypeJoinConfirm, RoomCode: snap.Code},
		Members:  existing,
		HostID:   snap.HostID,
	})
	r.notifyMembers(existing, protocol.MemberNotice{
		Envelope: protocol.Envelope{Type: protocol.TypePlayerJoined, RoomCode: snap.Code},
		ID:       c.id,
	})
	log.Printf("[ROOM] %s: %s joined (members: %d)", snap.Code, c.id, len(snap.Members))
}

func (r *Relay) handleAutoJoin(c *Client) {
	snap, existing, created, err := r.registry.AutoJoin(c.id)
	if err != nil {
		r.sendError(c, err)
		return
	}
	r.send(c, protocol.RoomConfirm{
		Envelope: protocol.Envelope{Type: protocol.TypeAutoJoinConfirm, RoomCode: snap.Code},
		Members:  existing,
		HostID:   snap.HostID,
	})
	if !created {
		r.notifyMembers(existing, protocol.MemberNotice{
			Envelope: protocol.Envelope{Type: protocol.TypePlayerJoined, RoomCode: snap.Code},
			ID:       c.id,
		})
	}
	log.Printf("[ROOM] %s: %s matchmade (created: %v, members: %d)",
		snap.Code, c.id, created, len(snap.Members))
}

func (r *Relay) handleLeave(c *Client) {
	snap, newHost, removed, err := r.registry.Leave(c.id)
	if err != nil {
		// Leaving while not in a room is a no-op, not a protocol breach.
		return
	}
	if removed {
		log.Printf("[ROOM] %s deleted (last member %s left)", snap.Code, c.id)
		return
	}
	r.notifyMembers(snap.Members, protocol.MemberNotice{
		Envelope: protocol.Envelope{Type: protocol.TypePlayerLeft, RoomCode: snap.Code},
		ID:       c.id,
	})
	if newHost != "" {
		r.notifyMembers(snap.Members, protocol.MemberNotice{
			Envelope: protocol.Envelope{Type: protocol.TypeHostChanged, RoomCode: snap.Code},
			ID:       newHost,
		})
	}
	log.Printf("[ROOM] %s: %s left (remaining: %d)", snap.Code, c.id, len(snap.Members))
}

// relayFrame forwards a game frame to the sender's room with senderId
// stamped. Frames from clients outside any room are dropped.
func (r *Relay) relayFrame(c *Client, env protocol.Envelope, data []byte) {
	if _, ok := r.registry.RoomOf(c.id); !ok {
		return
	}
	stamped, err := protocol.StampSender(data, c.id)
	if err != nil {
		log.Printf("[RELAY] drop unstampable frame from %s: %v", c.id, err)
		return
	}
	peers, _ := r.registry.Peers(c.id)

	if env.TargetID != "" {
		// Point-to-point signaling: route to the one addressed member.
		for _, id := range peers {
			if id == env.TargetID {
				r.sendBytes(r.clients[id], stamped)
				r.relayed.Add(1)
				return
			}
		}
		return
	}

	for _, id := range peers {
		r.sendBytes(r.clients[id], stamped)
	}
	r.relayed.Add(uint64(len(peers)))
}

// notifyMembers sends a server-originated notice to every listed member.
func (r *Relay) notifyMembers(ids []string, msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[RELAY] encode notice: %v", err)
		return
	}
	for _, id := range ids {
		r.sendBytes(r.clients[id], data)
	}
}

func (r *Relay) send(c *Client, msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("[RELAY] encode: %v", err)
		return
	}
	r.sendBytes(c, data)
}

func (r *Relay) sendError(c *Client, err error) {
	r.send(c, protocol.ErrorMessage{
		Envelope: protocol.Envelope{Type: protocol.TypeError},
		Message:  err.Error(),
	})
}

// sendBytes queues a frame for one connection, disconnecting it instead
// of blocking when its buffer is full.
func (r *Relay) sendBytes(c *Client, data []byte) {
	if c == nil {
		return
	}
	select {
	case c.send <- data:
	default:
		r.unregisterClient(c)
	}
}

// RoomDirectory implementation (consumed by the REST API and MCP tools).

var _ service.RoomDirectory = (*Relay)(nil)

// ListRooms returns every room, oldest first.
func (r *Relay) ListRooms(ctx context.Context) ([]*service.RoomInfo, error) {
	snaps := r.registry.List()
	out := make([]*service.RoomInfo, len(snaps))
	for i, s := range snaps {
		out[i] = roomInfo(s)
	}
	return out, nil
}

// GetRoom returns one room by code.
func (r *Relay) GetRoom(ctx context.Context, code string) (*service.RoomInfo, error) {
	snap, err := r.registry.Get(code)
	if err != nil {
		return nil, err
	}
	return roomInfo(snap), nil
}

// CloseRoom evicts every member of a room and deletes it. The eviction
// runs on the relay loop so the connection set stays consistent.
func (r *Relay) CloseRoom(ctx context.Context, code string) error {
	errc := make(chan error, 1)
	op := func() { errc <- r.closeRoom(code) }

	select {
	case r.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) closeRoom(code string) error {
	snap, err := r.registry.Get(code)
	if err != nil {
		return err
	}
	notice, _ := protocol.Encode(protocol.ErrorMessage{
		Envelope: protocol.Envelope{Type: protocol.TypeError, RoomCode: code},
		Message:  "room closed by operator",
	})
	for _, id := range snap.Members {
		if c, ok := r.clients[id]; ok {
			r.sendBytes(c, notice)
		}
		if _, _, _, err := r.registry.Leave(id); err != nil && !errors.Is(err, room.ErrNotInRoom) {
			log.Printf("[ROOM] close %s: evict %s: %v", code, id, err)
		}
	}
	log.Printf("[ROOM] %s closed by operator (%d members evicted)", code, len(snap.Members))
	return nil
}

// Stats summarizes the relay process.
func (r *Relay) Stats(ctx context.Context) (*service.ServerStats, error) {
	rooms, clients := r.registry.Counts()
	return &service.ServerStats{
		Rooms:           rooms,
		Clients:         clients,
		Connections:     int(r.connCount.Load()),
		MessagesRelayed: r.relayed.Load(),
		Uptime:          time.Since(r.startedAt),
		StartedAt:       r.startedAt,
	}, nil
}

func roomInfo(s room.Snapshot) *service.RoomInfo {
	return &service.RoomInfo{
		Code:        s.Code,
		HostID:      s.HostID,
		CreatedAt:   s.CreatedAt,
		MemberCount: len(s.Members),
		Members:     s.Members,
		Capacity:    s.Capacity,
	}
}
