package sync

import (
	"time"

	"github.com/skyshot-game/skyshot/game/protocol"
)

// Bullet is a projectile simulated identically on every client from its
// one-time spawn parameters.
type Bullet struct {
	ID        string
	OwnerID   string
	Origin    protocol.Vec3
	Direction protocol.Vec3
	Speed     float64
	SpawnedAt time.Time
	Lifespan  time.Duration
}

// PositionAt evaluates the bullet's straight-line motion at the given
// wall-clock instant.
func (b *Bullet) PositionAt(now time.Time) protocol.Vec3 {
	return LinearPosition(b.Origin, b.Direction, b.Speed, now.Sub(b.SpawnedAt).Seconds())
}

// Expired reports whether the bullet's lifespan has elapsed.
func (b *Bullet) Expired(now time.Time) bool {
	return now.Sub(b.SpawnedAt) >= b.Lifespan
}

// Bird is a host-spawned target orbiting deterministically.
type Bird struct {
	ID        string
	Orbit     OrbitParams
	SpawnedAt time.Time
	Lifespan  time.Duration
	Hits      int
}

// PositionAt evaluates the bird's orbit at the given wall-clock instant.
func (b *Bird) PositionAt(now time.Time) protocol.Vec3 {
	return OrbitPosition(b.Orbit, now.Sub(b.SpawnedAt).Seconds())
}

// Expired reports whether the bird outlived its lifespan without a kill.
func (b *Bird) Expired(now time.Time) bool {
	return now.Sub(b.SpawnedAt) >= b.Lifespan
}

// Sphere is a static shared prop.
type Sphere struct {
	ID       string
	Position protocol.Vec3
	Radius   float64
}

// remotePlayer is a peer driven by interpolation toward its last received
// pose.
type remotePlayer struct {
	id      string
	current protocol.PlayerPose
	target  protocol.PlayerPose
	hasPose bool
}

// Tracker holds the local belief about remote entities. It is owned by
// the Session's thread and is not safe for concurrent use.
type Tracker struct {
	players map[string]*remotePlayer // keyed by client id
	bullets map[string]*Bullet       // keyed by entity id
	birds   map[string]*Bird
	spheres map[string]*Sphere
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		players: make(map[string]*remotePlayer),
		bullets: make(map[string]*Bullet),
		birds:   make(map[string]*Bird),
		spheres: make(map[string]*Sphere),
	}
}

func (t *Tracker) AddPlayer(id string) bool {
	if _, ok := t.players[id]; ok {
		return false
	}
	t.players[id] = &remotePlayer{id: id}
	return true
}

func (t *Tracker) RemovePlayer(id string) bool {
	if _, ok := t.players[id]; !ok {
		return false
	}
	delete(t.players, id)
	return true
}

func (t *Tracker) AddBullet(b *Bullet) bool {
	if _, ok := t.bullets[b.ID]; ok {
		return false
	}
	t.bullets[b.ID] = b
	return true
}

func (t *Tracker) RemoveBullet(id string) (*Bullet, bool) {
	b, ok := t.bullets[id]
	if ok {
		delete(t.bullets, id)
	}
	return b, ok
}

func (t *Tracker) AddBird(b *Bird) bool {
	if _, ok := t.birds[b.ID]; ok {
		return false
	}
	t.birds[b.ID] = b
	return true
}

func (t *Tracker) RemoveBird(id string) (*Bird, bool) {
	b, ok := t.birds[id]
	if ok {
		delete(t.birds, id)
	}
	return b, ok
}

func (t *Tracker) AddSphere(s *Sphere) bool {
	if _, ok := t.spheres[s.ID]; ok {
		return false
	}
	t.spheres[s.ID] = s
	return true
}

func (t *Tracker) RemoveSphere(id string) (*Sphere, bool) {
	s, ok := t.spheres[id]
	if ok {
		delete(t.spheres, id)
	}
	return s, ok
}

// Birds returns the currently tracked birds in no particular order.
func (t *Tracker) Birds() []*Bird {
	out := make([]*Bird, 0, len(t.birds))
	for _, b := range t.birds {
		out = append(out, b)
	}
	return out
}

// Counts returns the tracked entity counts (players, bullets, birds,
// spheres).
func (t *Tracker) Counts() (int, int, int, int) {
	return len(t.players), len(t.bullets), len(t.birds), len(t.spheres)
}
