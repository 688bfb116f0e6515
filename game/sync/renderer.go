package sync

import "github.com/skyshot-game/skyshot/game/protocol"

// EntityClass distinguishes the networked entity kinds.
type EntityClass string

const (
	ClassPlayer EntityClass = "player"
	ClassBullet EntityClass = "bullet"
	ClassBird   EntityClass = "bird"
	ClassSphere EntityClass = "sphere"
)

// Transform is the primary spatial state handed to the renderer.
type Transform struct {
	Position protocol.Vec3
	Rotation protocol.Quat
}

// Renderer is the rendering collaborator. The sync layer tells it what
// exists and where; it knows nothing about networking. Calls are keyed by
// entity id and always arrive on the Session's thread.
type Renderer interface {
	SpawnEntity(class EntityClass, id string, t Transform)
	UpdateEntity(class EntityClass, id string, t Transform)
	// UpdatePlayerPose carries the full player pose (head and controllers)
	// that a plain Transform cannot express.
	UpdatePlayerPose(id string, pose protocol.PlayerPose)
	RemoveEntity(class EntityClass, id string)
}

// NopRenderer discards every call. Useful for headless clients and tests.
type NopRenderer struct{}

func (NopRenderer) SpawnEntity(EntityClass, string, Transform)   {}
func (NopRenderer) UpdateEntity(EntityClass, string, Transform)  {}
func (NopRenderer) UpdatePlayerPose(string, protocol.PlayerPose) {}
func (NopRenderer) RemoveEntity(EntityClass, string)             {}
