package room

import (
	"crypto/rand"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrRoomExists    = errors.New("room code already in use")
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("client already in a room")
	ErrNotInRoom     = errors.New("client not in a room")
	ErrInvalidCode   = errors.New("invalid room code")
)

// CodeLength is the length of a room code. Codes are uppercase
// alphanumeric so they are easy to read out loud between players.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCapacity is the room capacity used when none is configured.
const DefaultCapacity = 4

// Member records one client's membership in a room.
type Member struct {
	ID       string
	JoinedAt time.Time
}

// Room groups the connections sharing one game session.
type Room struct {
	Code      string
	HostID    string
	CreatedAt time.Time
	members   map[string]Member
}

// MemberIDs returns the member identities in join order.
func (r *Room) MemberIDs() []string {
	members := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

// Size returns the current member count.
func (r *Room) Size() int { return len(r.members) }

// Snapshot is a copied, read-only view of a room handed to observers.
type Snapshot struct {
	Code      string    `json:"code"`
	HostID    string    `json:"hostId"`
	CreatedAt time.Time `json:"createdAt"`
	Members   []string  `json:"members"`
	Capacity  int       `json:"capacity"`
}

// Registry owns the room and client tables.
type Registry struct {
	capacity int
	rooms    map[string]*Room   // room code -> room
	clients  map[string]string  // client id -> room code
	mu       sync.RWMutex
	now      func() time.Time
}

// NewRegistry creates a registry with the given room capacity. A
// non-positive capacity falls back to DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		rooms:    make(map[string]*Room),
		clients:  make(map[string]string),
		now:      time.Now,
	}
}

// Capacity returns the configured room capacity.
func (reg *Registry) Capacity() int { return reg.capacity }

// Host creates a room with the given code and the requester as host and
// sole member. An empty code asks for a generated one. The existing room
// table is left untouched when the code is taken.
func (reg *Registry) Host(clientID, code string) (Snapshot, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, in := reg.clients[clientID]; in {
		return Snapshot{}, ErrAlreadyInRoom
	}
	if code == "" {
		code = reg.generateCode()
	} else if !ValidCode(code) {
		return Snapshot{}, ErrInvalidCode
	}
	if _, taken := reg.rooms[code]; taken {
		return Snapshot{}, ErrRoomExists
	}

	now := reg.now()
	r := &Room{
		Code:      code,
		HostID:    clientID,
		CreatedAt: now,
		members:   map[string]Member{clientID: {ID: clientID, JoinedAt: now}},
	}
	reg.rooms[code] = r
	reg.clients[clientID] = code
	return reg.snapshot(r), nil
}

// Join adds the client to an existing room. It returns the room snapshot
// and the identities of the members present before the join, so the
// confirmation can carry the peer list.
func (reg *Registry) Join(clientID, code string) (Snapshot, []string, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, in := reg.clients[clientID]; in {
		return Snapshot{}, nil, ErrAlreadyInRoom
	}
	r, ok := reg.rooms[code]
	if !ok {
		return Snapshot{}, nil, ErrRoomNotFound
	}
	if len(r.members) >= reg.capacity {
		return Snapshot{}, nil, ErrRoomFull
	}

	existing := r.MemberIDs()
	r.members[clientID] = Member{ID: clientID, JoinedAt: reg.now()}
	reg.clients[clientID] = code
	return reg.snapshot(r), existing, nil
}

// AutoJoin matchmakes the client into the oldest room with spare capacity,
// creating a fresh room (with the client as host) when every room is full
// or none exists. The returned created flag tells the caller whether a
// playerJoined notice is needed.
func (reg *Registry) AutoJoin(clientID string) (Snapshot, []string, bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, in := reg.clients[clientID]; in {
		return Snapshot{}, nil, false, ErrAlreadyInRoom
	}

	var candidate *Room
	for _, r := range reg.rooms {
		if len(r.members) >= reg.capacity {
			continue
		}
		if candidate == nil || r.CreatedAt.Before(candidate.CreatedAt) {
			candidate = r
		}
	}

	now := reg.now()
	if candidate == nil {
		r := &Room{
			Code:      reg.generateCode(),
			HostID:    clientID,
			CreatedAt: now,
			members:   map[string]Member{clientID: {ID: clientID, JoinedAt: now}},
		}
		reg.rooms[r.Code] = r
		reg.clients[clientID] = r.Code
		return reg.snapshot(r), nil, true, nil
	}

	existing := candidate.MemberIDs()
	candidate.members[clientID] = Member{ID: clientID, JoinedAt: now}
	reg.clients[clientID] = candidate.Code
	return reg.snapshot(candidate), existing, false, nil
}

// Leave removes the client from its room. It returns the room snapshot
// after removal, the id of the newly promoted host when the departing
// client was host of a non-empty room, and whether the room was deleted.
func (reg *Registry) Leave(clientID string) (Snapshot, string, bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, in := reg.clients[clientID]
	if !in {
		return Snapshot{}, "", false, ErrNotInRoom
	}
	r := reg.rooms[code]
	delete(r.members, clientID)
	delete(reg.clients, clientID)

	if len(r.members) == 0 {
		delete(reg.rooms, code)
		return Snapshot{Code: code, Capacity: reg.capacity}, "", true, nil
	}

	newHost := ""
	if r.HostID == clientID {
		r.HostID = r.MemberIDs()[0]
		newHost = r.HostID
	}
	return reg.snapshot(r), newHost, false, nil
}

// RoomOf returns the code of the room the client is in, if any.
func (reg *Registry) RoomOf(clientID string) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	code, ok := reg.clients[clientID]
	return code, ok
}

// Peers returns the other members of the client's room.
func (reg *Registry) Peers(clientID string) ([]string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	code, ok := reg.clients[clientID]
	if !ok {
		return nil, false
	}
	peers := make([]string, 0, len(reg.rooms[code].members)-1)
	for _, id := range reg.rooms[code].MemberIDs() {
		if id != clientID {
			peers = append(peers, id)
		}
	}
	return peers, true
}

// Get returns a snapshot of the room with the given code.
func (reg *Registry) Get(code string) (Snapshot, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[code]
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	return reg.snapshot(r), nil
}

// List returns snapshots of every room, oldest first.
func (reg *Registry) List() []Snapshot {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]Snapshot, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, reg.snapshot(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Counts returns the number of rooms and of clients currently in rooms.
func (reg *Registry) Counts() (rooms, clients int) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms), len(reg.clients)
}

func (reg *Registry) snapshot(r *Room) Snapshot {
	return Snapshot{
		Code:      r.Code,
		HostID:    r.HostID,
		CreatedAt: r.CreatedAt,
		Members:   r.MemberIDs(),
		Capacity:  reg.capacity,
	}
}

// generateCode returns a fresh room code not currently in the table.
// Caller must hold the lock.
func (reg *Registry) generateCode() string {
	for {
		buf := make([]byte, CodeLength)
		rand.Read(buf)
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(buf)
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}

// ValidCode reports whether code is a well-formed room code: exactly
// CodeLength uppercase alphanumeric characters.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
