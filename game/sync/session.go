package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skyshot-game/skyshot/game/protocol"
)

var (
	ErrNotConnected     = errors.New("session not connected")
	ErrAlreadyConnected = errors.New("session already connected")
	ErrNotInRoom        = errors.New("not in a room")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNotHost          = errors.New("operation requires host authority")
	ErrNotOwner         = errors.New("entity is owned by another client")
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrConnectionClosed = errors.New("connection closed")
	ErrRequestTimeout   = errors.New("request timed out")
	ErrRequestRejected  = errors.New("request rejected")
)

// State is the session lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateInRoom
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "inRoom"
	default:
		return "unknown"
	}
}

// Options configures a Session. Zero values fall back to the defaults
// used by the browser client.
type Options struct {
	// PoseInterval is how often the local pose is streamed while in a
	// room. Default 50ms.
	PoseInterval time.Duration

	// RequestTimeout bounds every request/confirm exchange. Default 5s.
	RequestTimeout time.Duration

	// InterpFactor is the per-frame blend factor for remote player poses.
	// Default DefaultInterpFactor.
	InterpFactor float64

	// BulletLifespan is how long bullets live without a reported hit.
	// Default 3s.
	BulletLifespan time.Duration

	// BirdLifespan is how long birds live without a kill. Default 30s.
	BirdLifespan time.Duration

	// BirdCorrectionInterval is how often the host broadcasts bird age
	// corrections. Default 5s.
	BirdCorrectionInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.PoseInterval <= 0 {
		o.PoseInterval = 50 * time.Millisecond
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 5 * time.Second
	}
	if o.InterpFactor <= 0 {
		o.InterpFactor = DefaultInterpFactor
	}
	if o.BulletLifespan <= 0 {
		o.BulletLifespan = 3 * time.Second
	}
	if o.BirdLifespan <= 0 {
		o.BirdLifespan = 30 * time.Second
	}
	if o.BirdCorrectionInterval <= 0 {
		o.BirdCorrectionInterval = 5 * time.Second
	}
}

// inFrame is one frame from the read goroutine, or its terminal error.
type inFrame struct {
	data []byte
	err  error
}

// Session is one client's connection, room membership, and entity belief.
// Single-threaded by contract; see the package comment.
type Session struct {
	url      string
	opts     Options
	renderer Renderer

	state    State
	clientID string
	roomCode string
	hostID   string

	conn     *websocket.Conn
	incoming chan inFrame

	tracker *Tracker
	scores  *ScoreLedger

	localPose    protocol.PlayerPose
	hasLocalPose bool
	lastPoseSent time.Time
	lastBirdSync time.Time

	gameStartedAt int64
	gameActive    bool

	onScore     func(playerID string, total int)
	onSignal    func(env protocol.Envelope, raw []byte)
	onGameStart func(startTime int64)
	onGameEnd   func()
	onError     func(message string)

	now func() time.Time
}

// NewSession creates a session for the given relay URL (ws:// or wss://).
// A nil renderer is replaced with NopRenderer.
func NewSession(url string, renderer Renderer, opts Options) *Session {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	opts.setDefaults()
	return &Session{
		url:      url,
		opts:     opts,
		renderer: renderer,
		tracker:  NewTracker(),
		scores:   NewScoreLedger(),
		now:      time.Now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// ClientID returns the server-assigned identity, empty until connected.
func (s *Session) ClientID() string { return s.clientID }

// RoomCode returns the current room code, empty outside a room.
func (s *Session) RoomCode() string { return s.roomCode }

// HostID returns the current room's host identity.
func (s *Session) HostID() string { return s.hostID }

// IsHost reports whether the local client holds host authority.
func (s *Session) IsHost() bool {
	return s.state == StateInRoom && s.hostID != "" && s.hostID == s.clientID
}

// Scores returns a copy of the replicated score ledger.
func (s *Session) Scores() map[string]int { return s.scores.Totals() }

// Tracker exposes the entity belief for inspection.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Callback registration. All callbacks run on the Session's thread.

func (s *Session) OnScore(fn func(playerID string, total int)) { s.onScore = fn }

func (s *Session) OnSignal(fn func(env protocol.Envelope, raw []byte)) { s.onSignal = fn }

func (s *Session) OnGameStart(fn func(startTime int64)) { s.onGameStart = fn }

func (s *Session) OnGameEnd(fn func()) { s.onGameEnd = fn }

func (s *Session) OnError(fn func(message string)) { s.onError = fn }

// Connect opens the channel and waits for the identity assignment. On
// return the session is Connected and ClientID is set.
func (s *Session) Connect(ctx context.Context) error {
	if s.state != StateDisconnected {
		return ErrAlreadyConnected
	}

	ctx, cancel := s.withRequestTimeout(ctx)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.conn = conn
	s.incoming = make(chan inFrame, 256)
	s.state = StateConnecting
	go readLoop(conn, s.incoming)

	// The first server frame is the init carrying our identity.
	for s.state == StateConnecting {
		if _, err := s.pumpOne(ctx); err != nil {
			s.teardown()
			return err
		}
	}
	return nil
}

// Close tears the connection down and discards all remote entities. The
// local pose survives for a subsequent reconnect.
func (s *Session) Close() error {
	if s.state == StateDisconnected {
		return nil
	}
	err := s.conn.Close()
	s.teardown()
	return err
}

// HostRoom creates a room with the given code (empty for a generated
// one) and waits for the confirmation.
func (s *Session) HostRoom(ctx context.Context, code string) error {
	if err := s.requireState(StateConnected); err != nil {
		return err
	}
	if err := s.sendMsg(protocol.HostRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeHost, RoomCode: code},
	}); err != nil {
		return err
	}
	return s.awaitConfirm(ctx, protocol.TypeHostConfirm)
}

// JoinRoom joins an existing room and waits for the confirmation.
func (s *Session) JoinRoom(ctx context.Context, code string) error {
	if err := s.requireState(StateConnected); err != nil {
		return err
	}
	if err := s.sendMsg(protocol.JoinRequest{
		Envelope: protocol.Envelope{Type: protocol.TypeJoin, RoomCode: code},
	}); err != nil {
		return err
	}
	return s.awaitConfirm(ctx, protocol.TypeJoinConfirm)
}

// AutoJoin matchmakes into any under-capacity room, creating one when
// none exists, and returns the room code. The request fails explicitly
// after the request timeout rather than hanging.
func (s *Session) AutoJoin(ctx context.Context) (string, error) {
	if err := s.requireState(StateConnected); err != nil {
		return "", err
	}
	if err := s.sendMsg(protocol.Envelope{Type: protocol.TypeAutoJoin}); err != nil {
		return "", err
	}
	if err := s.awaitConfirm(ctx, protocol.TypeAutoJoinConfirm); err != nil {
		return "", err
	}
	return s.roomCode, nil
}

// LeaveRoom leaves the current room. Remote entities are discarded
// immediately; there is no confirmation to wait for.
func (s *Session) LeaveRoom() error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	err := s.sendMsg(protocol.Envelope{Type: protocol.TypeLeave})
	s.clearRemoteEntities()
	s.state = StateConnected
	s.roomCode = ""
	s.hostID = ""
	s.gameActive = false
	return err
}

// Advance is called once per local frame. It drains queued frames, steps
// deterministic entities, blends remote player poses, streams the local
// pose, and on the host broadcasts bird age corrections.
func (s *Session) Advance(now time.Time) {
drain:
	for s.incoming != nil {
		select {
		case f, ok := <-s.incoming:
			if !ok || f.err != nil {
				s.handleTransportFailure(f.err)
				return
			}
			s.handleFrame(f.data)
		default:
			break drain
		}
	}
	if s.state != StateInRoom {
		return
	}
	s.stepBullets(now)
	s.stepBirds(now)
	s.blendPlayers()
	s.streamPose(now)
	s.streamBirdCorrections(now)
}

// SetLocalPose records the local player's pose for the position stream.
func (s *Session) SetLocalPose(pose protocol.PlayerPose) {
	s.localPose = pose
	s.hasLocalPose = true
}

// FireBullet spawns a bullet owned by the local client, applies it
// locally first, then broadcasts the spawn parameters.
func (s *Session) FireBullet(origin, direction protocol.Vec3, speed float64) (string, error) {
	if s.state != StateInRoom {
		return "", ErrNotInRoom
	}
	id := uuid.NewString()
	b := &Bullet{
		ID:        id,
		OwnerID:   s.clientID,
		Origin:    origin,
		Direction: direction.Normalized(),
		Speed:     speed,
		SpawnedAt: s.now(),
		Lifespan:  s.opts.BulletLifespan,
	}
	s.tracker.AddBullet(b)
	s.renderer.SpawnEntity(ClassBullet, id, Transform{Position: origin, Rotation: protocol.IdentityQuat})

	err := s.sendMsg(protocol.BulletSpawned{
		Envelope:  protocol.Envelope{Type: protocol.TypeBulletSpawned},
		ID:        id,
		Position:  origin,
		Direction: b.Direction,
		Speed:     speed,
	})
	return id, err
}

// ReportBulletHit removes a locally owned bullet after a collision
// observed by the local hit detection and broadcasts the removal. Only
// the shooter may destroy its bullet.
func (s *Session) ReportBulletHit(bulletID string, at protocol.Vec3) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	b, ok := s.tracker.bullets[bulletID]
	if !ok {
		return ErrUnknownEntity
	}
	if b.OwnerID != s.clientID {
		return ErrNotOwner
	}
	s.tracker.RemoveBullet(bulletID)
	s.renderer.RemoveEntity(ClassBullet, bulletID)
	return s.sendMsg(protocol.BulletHit{
		Envelope: protocol.Envelope{Type: protocol.TypeBulletHit},
		ID:       bulletID,
		Position: at,
	})
}

// SpawnBird spawns a target. Host authority is enforced locally before
// anything is applied or sent.
func (s *Session) SpawnBird(orbit OrbitParams) (string, error) {
	if s.state != StateInRoom {
		return "", ErrNotInRoom
	}
	if !s.IsHost() {
		return "", ErrNotHost
	}
	id := uuid.NewString()
	b := &Bird{ID: id, Orbit: orbit, SpawnedAt: s.now(), Lifespan: s.opts.BirdLifespan}
	s.tracker.AddBird(b)
	s.renderer.SpawnEntity(ClassBird, id, Transform{
		Position: OrbitPosition(orbit, 0),
		Rotation: protocol.IdentityQuat,
	})

	err := s.sendMsg(protocol.BirdSpawned{
		Envelope:     protocol.Envelope{Type: protocol.TypeBirdSpawned},
		ID:           id,
		Origin:       orbit.Origin,
		Radius:       orbit.Radius,
		AngularSpeed: orbit.AngularSpeed,
		BaseHeight:   orbit.BaseHeight,
		BobAmplitude: orbit.BobAmplitude,
		BobFrequency: orbit.BobFrequency,
	})
	return id, err
}

// ReportBirdHit registers a non-lethal hit observed locally.
func (s *Session) ReportBirdHit(birdID, shooterID string) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	b, ok := s.tracker.birds[birdID]
	if !ok {
		return ErrUnknownEntity
	}
	b.Hits++
	return s.sendMsg(protocol.BirdHit{
		Envelope:  protocol.Envelope{Type: protocol.TypeBirdHit},
		ID:        birdID,
		ShooterID: shooterID,
	})
}

// ReportBirdKilled removes a bird after a kill observed locally and
// broadcasts the removal. The score award is emitted only when the local
// client is the shooter: every other observer applies the shooter's
// broadcast total, so two clients seeing the same kill converge on a
// single award.
func (s *Session) ReportBirdKilled(birdID, shooterID string, points int) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	b, ok := s.tracker.RemoveBird(birdID)
	if !ok {
		// Already removed by a peer's broadcast; the kill was scored once.
		return ErrUnknownEntity
	}
	s.renderer.RemoveEntity(ClassBird, b.ID)

	if err := s.sendMsg(protocol.BirdKilled{
		Envelope:  protocol.Envelope{Type: protocol.TypeBirdKilled},
		ID:        birdID,
		ShooterID: shooterID,
	}); err != nil {
		return err
	}

	if shooterID == s.clientID {
		total := s.scores.Award(shooterID, points)
		s.emitScore(shooterID, total)
		return s.sendMsg(protocol.ScoreUpdate{
			Envelope: protocol.Envelope{Type: protocol.TypeScoreUpdate},
			PlayerID: shooterID,
			Total:    total,
		})
	}
	return nil
}

// SpawnSphere places a shared static prop.
func (s *Session) SpawnSphere(position protocol.Vec3, radius float64) (string, error) {
	if s.state != StateInRoom {
		return "", ErrNotInRoom
	}
	id := uuid.NewString()
	s.tracker.AddSphere(&Sphere{ID: id, Position: position, Radius: radius})
	s.renderer.SpawnEntity(ClassSphere, id, Transform{Position: position, Rotation: protocol.IdentityQuat})
	err := s.sendMsg(protocol.SphereSpawned{
		Envelope: protocol.Envelope{Type: protocol.TypeSphereSpawned},
		ID:       id,
		Position: position,
		Radius:   radius,
	})
	return id, err
}

// RemoveSphere removes a shared prop.
func (s *Session) RemoveSphere(id string) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	if _, ok := s.tracker.RemoveSphere(id); !ok {
		return ErrUnknownEntity
	}
	s.renderer.RemoveEntity(ClassSphere, id)
	return s.sendMsg(protocol.SphereRemoved{
		Envelope: protocol.Envelope{Type: protocol.TypeSphereRemoved},
		ID:       id,
	})
}

// StartGame broadcasts the session timer start. Host only.
func (s *Session) StartGame() error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	if !s.IsHost() {
		return ErrNotHost
	}
	start := s.now().UnixMilli()
	s.gameActive = true
	s.gameStartedAt = start
	return s.sendMsg(protocol.GameTimer{
		Envelope:  protocol.Envelope{Type: protocol.TypeGameStart},
		StartTime: start,
	})
}

// EndGame broadcasts the session timer end. Host only.
func (s *Session) EndGame() error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	if !s.IsHost() {
		return ErrNotHost
	}
	s.gameActive = false
	return s.sendMsg(protocol.GameTimer{
		Envelope: protocol.Envelope{Type: protocol.TypeGameEnd},
	})
}

// SendSignal sends a point-to-point signaling message, routed by the
// server to targetID when non-empty and broadcast otherwise.
func (s *Session) SendSignal(msgType, targetID string, payload []byte) error {
	if s.state != StateInRoom {
		return ErrNotInRoom
	}
	return s.sendMsg(protocol.Signal{
		Envelope: protocol.Envelope{Type: msgType, TargetID: targetID},
		PlayerID: s.clientID,
		Payload:  payload,
	})
}

// Internal machinery.

func (s *Session) requireState(want State) error {
	switch s.state {
	case want:
		return nil
	case StateDisconnected, StateConnecting:
		// Room requests before the connection is up are surfaced as
		// errors, never queued or silently dropped.
		return ErrNotConnected
	case StateInRoom:
		return ErrAlreadyInRoom
	default:
		return fmt.Errorf("unexpected session state %v", s.state)
	}
}

func (s *Session) withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}

// pumpOne blocks for one frame and dispatches it.
func (s *Session) pumpOne(ctx context.Context) (frameResult, error) {
	select {
	case f, ok := <-s.incoming:
		if !ok || f.err != nil {
			s.handleTransportFailure(f.err)
			return frameResult{}, ErrConnectionClosed
		}
		return s.handleFrame(f.data), nil
	case <-ctx.Done():
		return frameResult{}, fmt.Errorf("%w: %v", ErrRequestTimeout, ctx.Err())
	}
}

// awaitConfirm pumps frames until the expected confirmation, a rejection,
// or the deadline. Unrelated frames received while waiting are dispatched
// normally, not discarded.
func (s *Session) awaitConfirm(ctx context.Context, confirmType string) error {
	ctx, cancel := s.withRequestTimeout(ctx)
	defer cancel()

	for {
		res, err := s.pumpOne(ctx)
		if err != nil {
			return err
		}
		switch res.env.Type {
		case confirmType:
			return nil
		case protocol.TypeError:
			return fmt.Errorf("%w: %s", ErrRequestRejected, res.errMessage)
		}
	}
}

func (s *Session) sendMsg(msg any) error {
	if s.conn == nil {
		return ErrNotConnected
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if s.roomCode != "" {
		// Room-scoped messages are stamped here so callers cannot forget.
		if data, err = protocol.StampRoom(data, s.roomCode); err != nil {
			return err
		}
	}
	s.conn.SetWriteDeadline(s.now().Add(10 * time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) stepBullets(now time.Time) {
	for id, b := range s.tracker.bullets {
		if b.Expired(now) {
			delete(s.tracker.bullets, id)
			s.renderer.RemoveEntity(ClassBullet, id)
			if b.OwnerID == s.clientID {
				// Expiry of an owned bullet is broadcast by its shooter;
				// peers removed theirs from the same deterministic clock.
				s.sendMsg(protocol.BulletHit{
					Envelope: protocol.Envelope{Type: protocol.TypeBulletHit},
					ID:       id,
					Position: b.PositionAt(now),
				})
			}
			continue
		}
		s.renderer.UpdateEntity(ClassBullet, id, Transform{
			Position: b.PositionAt(now),
			Rotation: protocol.IdentityQuat,
		})
	}
}

func (s *Session) stepBirds(now time.Time) {
	for id, b := range s.tracker.birds {
		if b.Expired(now) {
			delete(s.tracker.birds, id)
			s.renderer.RemoveEntity(ClassBird, id)
			if s.IsHost() {
				s.sendMsg(protocol.BirdRemoved{
					Envelope: protocol.Envelope{Type: protocol.TypeBirdRemoved},
					ID:       id,
				})
			}
			continue
		}
		s.renderer.UpdateEntity(ClassBird, id, Transform{
			Position: b.PositionAt(now),
			Rotation: protocol.IdentityQuat,
		})
	}
}

func (s *Session) blendPlayers() {
	for _, p := range s.tracker.players {
		if !p.hasPose {
			continue
		}
		p.current = BlendPose(p.current, p.target, s.opts.InterpFactor)
		s.renderer.UpdatePlayerPose(p.id, p.current)
	}
}

func (s *Session) streamPose(now time.Time) {
	if !s.hasLocalPose || now.Sub(s.lastPoseSent) < s.opts.PoseInterval {
		return
	}
	s.lastPoseSent = now
	s.sendMsg(protocol.Position{
		Envelope:   protocol.Envelope{Type: protocol.TypePosition},
		ID:         s.clientID,
		PlayerPose: s.localPose,
	})
}

// streamBirdCorrections periodically rebroadcasts bird ages from the
// host, letting late or drifted peers rebase their spawn times.
func (s *Session) streamBirdCorrections(now time.Time) {
	if !s.IsHost() || now.Sub(s.lastBirdSync) < s.opts.BirdCorrectionInterval {
		return
	}
	s.lastBirdSync = now
	for id, b := range s.tracker.birds {
		s.sendMsg(protocol.BirdUpdate{
			Envelope: protocol.Envelope{Type: protocol.TypeBirdUpdate},
			ID:       id,
			Age:      now.Sub(b.SpawnedAt).Seconds(),
		})
	}
}

func (s *Session) emitScore(playerID string, total int) {
	if s.onScore != nil {
		s.onScore(playerID, total)
	}
}

// clearRemoteEntities drops every remote entity and tells the renderer.
// The local player is deliberately untouched.
func (s *Session) clearRemoteEntities() {
	for id := range s.tracker.players {
		s.renderer.RemoveEntity(ClassPlayer, id)
	}
	for id := range s.tracker.bullets {
		s.renderer.RemoveEntity(ClassBullet, id)
	}
	for id := range s.tracker.birds {
		s.renderer.RemoveEntity(ClassBird, id)
	}
	for id := range s.tracker.spheres {
		s.renderer.RemoveEntity(ClassSphere, id)
	}
	s.tracker = NewTracker()
}

func (s *Session) handleTransportFailure(err error) {
	if err != nil && s.state != StateDisconnected {
		log.Printf("[SYNC] transport failure: %v", err)
	}
	s.teardown()
}

func (s *Session) teardown() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.incoming = nil
	s.clearRemoteEntities()
	s.state = StateDisconnected
	s.roomCode = ""
	s.hostID = ""
	s.clientID = ""
	s.gameActive = false
}

// readLoop pumps frames from the connection into the queue until the
// connection dies.
func readLoop(conn *websocket.Conn, out chan<- inFrame) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			out <- inFrame{err: err}
			return
		}
		out <- inFrame{data: data}
	}
}
