package protocol

import "encoding/json"

// Message type tags. The catalog is closed: dispatch points switch over
// these constants exhaustively and route anything else to an explicit
// ignore branch.
const (
	// Identity and room lifecycle (interpreted by the server).
	TypeInit            = "init"
	TypeHost            = "host"
	TypeJoin            = "join"
	TypeAutoJoin        = "autoJoin"
	TypeLeave           = "leave"
	TypeHostConfirm     = "hostConfirm"
	TypeJoinConfirm     = "joinConfirm"
	TypeAutoJoinConfirm = "autoJoinConfirm"
	TypeError           = "error"

	// Membership notices (server to room).
	TypePlayerJoined = "playerJoined"
	TypePlayerLeft   = "playerLeft"
	TypeHostChanged  = "hostChanged"

	// Entity traffic (relayed opaquely).
	TypePosition      = "position"
	TypeBulletSpawned = "bulletSpawned"
	TypeBulletHit     = "bulletHit"
	TypeBirdSpawned   = "birdSpawned"
	TypeBirdUpdate    = "birdUpdate"
	TypeBirdHit       = "birdHit"
	TypeBirdKilled    = "birdKilled"
	TypeBirdRemoved   = "birdRemoved"
	TypeSphereSpawned = "sphereSpawned"
	TypeSphereRemoved = "sphereRemoved"
	TypeScoreUpdate   = "scoreUpdate"

	// Session timer (host-issued, relayed opaquely).
	TypeGameStart = "gameStart"
	TypeGameEnd   = "gameEnd"

	// Point-to-point signaling passthrough (WebRTC voice negotiation).
	TypeVoiceReady        = "voice_ready"
	TypeVoiceOffer        = "voice_offer"
	TypeVoiceAnswer       = "voice_answer"
	TypeVoiceICECandidate = "voice_ice_candidate"
	TypeVoiceStop         = "voice_stop"
)

// Envelope carries the fields common to every wire message. Concrete
// message structs embed it so the JSON stays flat.
type Envelope struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	SenderID string `json:"senderId,omitempty"`
	TargetID string `json:"targetId,omitempty"`
}

// Init assigns the client its identity at connect time.
type Init struct {
	Envelope
	ID string `json:"id"`
}

// HostRequest asks the server to create a room with the given code and the
// requester as host. An empty code asks the server to generate one.
type HostRequest struct {
	Envelope
}

// JoinRequest asks the server to add the requester to an existing room.
type JoinRequest struct {
	Envelope
}

// RoomConfirm acknowledges a host, join, or autoJoin request. Members lists
// the identities of the other room members at the moment of joining, in
// join order; it is empty for a freshly hosted room. Positions are never
// server-held: late joiners converge through the position stream.
type RoomConfirm struct {
	Envelope
	Members []string `json:"members"`
	HostID  string   `json:"hostId"`
}

// MemberNotice announces a membership change (playerJoined, playerLeft) or
// a host promotion (hostChanged) to the remaining room members.
type MemberNotice struct {
	Envelope
	ID string `json:"id"`
}

// ErrorMessage reports a rejected request. The connection stays open.
type ErrorMessage struct {
	Envelope
	Message string `json:"message"`
}

// Position is the streamed pose of a player, sent at a fixed interval
// while in a room.
type Position struct {
	Envelope
	ID string `json:"id"`
	PlayerPose
}

// BulletSpawned carries everything peers need to simulate a bullet's
// motion locally: origin, direction, and speed. Bullets are never
// position-streamed; every client evaluates the same straight-line
// function of age.
type BulletSpawned struct {
	Envelope
	ID        string  `json:"id"`
	Position  Vec3    `json:"position"`
	Direction Vec3    `json:"direction"`
	Speed     float64 `json:"speed"`
}

// BulletHit removes a bullet after a collision or expiry observed by its
// shooter.
type BulletHit struct {
	Envelope
	ID       string `json:"id"`
	Position Vec3   `json:"position,omitempty"`
}

// BirdSpawned carries the full parametric orbit of a target so every
// client reproduces its motion from age alone. Host-only.
type BirdSpawned struct {
	Envelope
	ID           string  `json:"id"`
	Origin       Vec3    `json:"origin"`
	Radius       float64 `json:"radius"`
	AngularSpeed float64 `json:"angularSpeed"`
	BaseHeight   float64 `json:"baseHeight"`
	BobAmplitude float64 `json:"bobAmplitude,omitempty"`
	BobFrequency float64 `json:"bobFrequency,omitempty"`
}

// BirdUpdate is a periodic correction from the host carrying the bird's
// age in seconds as measured at the host. Receivers rebase the bird's
// effective spawn time when the implied age discrepancy exceeds the
// reconciliation tolerance.
type BirdUpdate struct {
	Envelope
	ID  string  `json:"id"`
	Age float64 `json:"age"`
}

// BirdHit registers a non-lethal hit on a target.
type BirdHit struct {
	Envelope
	ID        string `json:"id"`
	ShooterID string `json:"shooterId"`
}

// BirdKilled removes a target after a kill observed by any client. The
// scoring award itself travels separately as a ScoreUpdate emitted by the
// shooter's own client.
type BirdKilled struct {
	Envelope
	ID        string `json:"id"`
	ShooterID string `json:"shooterId"`
	Position  Vec3   `json:"position,omitempty"`
}

// BirdRemoved removes a target whose lifespan elapsed without a kill.
type BirdRemoved struct {
	Envelope
	ID string `json:"id"`
}

// SphereSpawned places a static prop shared by the room.
type SphereSpawned struct {
	Envelope
	ID       string  `json:"id"`
	Position Vec3    `json:"position"`
	Radius   float64 `json:"radius,omitempty"`
}

// SphereRemoved removes a shared prop.
type SphereRemoved struct {
	Envelope
	ID string `json:"id"`
}

// ScoreUpdate replicates one player's new score total. Only the shooter's
// own client emits the update for a kill it is credited with; receivers
// apply the total last-writer-wins.
type ScoreUpdate struct {
	Envelope
	PlayerID string `json:"playerId"`
	Total    int    `json:"total"`
}

// GameTimer starts or ends the room's session timer. Host-issued.
type GameTimer struct {
	Envelope
	StartTime int64 `json:"startTime,omitempty"`
}

// Signal is the point-to-point passthrough used for out-of-band voice
// negotiation between exactly two room members. The server routes it to
// TargetID when present and broadcasts otherwise; the payload is opaque to
// both the server and the sync layer.
type Signal struct {
	Envelope
	PlayerID string          `json:"playerId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}
