package sync

import (
	"log"

	"github.com/skyshot-game/skyshot/game/protocol"
)

// frameResult reports what a dispatched frame was, for the request/confirm
// machinery and for tests.
type frameResult struct {
	env        protocol.Envelope
	errMessage string
	dropped    bool
}

// handleFrame decodes and applies one server frame. Malformed frames and
// unknown types are logged and ignored; a bad peer frame must never take
// the session down. Self-echoes are suppressed before any other handling:
// local actions were already applied when they were sent.
func (s *Session) handleFrame(data []byte) frameResult {
	env, err := protocol.PeekEnvelope(data)
	if err != nil {
		log.Printf("[SYNC] dropping malformed frame: %v", err)
		return frameResult{dropped: true}
	}

	if env.SenderID != "" && env.SenderID == s.clientID {
		return frameResult{env: env, dropped: true}
	}

	switch env.Type {
	case protocol.TypeInit:
		s.applyInit(data)
	case protocol.TypeHostConfirm, protocol.TypeJoinConfirm, protocol.TypeAutoJoinConfirm:
		s.applyRoomConfirm(data)
	case protocol.TypeError:
		return s.applyError(env, data)
	case protocol.TypePlayerJoined:
		s.applyPlayerJoined(data)
	case protocol.TypePlayerLeft:
		s.applyPlayerLeft(data)
	case protocol.TypeHostChanged:
		s.applyHostChanged(data)
	case protocol.TypePosition:
		s.applyPosition(data)
	case protocol.TypeBulletSpawned:
		s.applyBulletSpawned(data)
	case protocol.TypeBulletHit:
		s.applyBulletHit(data)
	case protocol.TypeBirdSpawned:
		s.applyBirdSpawned(env, data)
	case protocol.TypeBirdUpdate:
		s.applyBirdUpdate(data)
	case protocol.TypeBirdHit:
		s.applyBirdHit(data)
	case protocol.TypeBirdKilled:
		s.applyBirdKilled(data)
	case protocol.TypeBirdRemoved:
		s.applyBirdRemoved(data)
	case protocol.TypeSphereSpawned:
		s.applySphereSpawned(data)
	case protocol.TypeSphereRemoved:
		s.applySphereRemoved(data)
	case protocol.TypeScoreUpdate:
		s.applyScoreUpdate(data)
	case protocol.TypeGameStart:
		s.applyGameStart(env, data)
	case protocol.TypeGameEnd:
		s.applyGameEnd(env)
	case protocol.TypeVoiceReady, protocol.TypeVoiceOffer, protocol.TypeVoiceAnswer,
		protocol.TypeVoiceICECandidate, protocol.TypeVoiceStop:
		if s.onSignal != nil {
			s.onSignal(env, data)
		}
	default:
		// Unknown types are ignored so older clients survive newer peers.
		log.Printf("[SYNC] ignoring unknown message type %q", env.Type)
		return frameResult{env: env, dropped: true}
	}
	return frameResult{env: env}
}

func (s *Session) applyInit(data []byte) {
	msg, err := protocol.DecodeAs[protocol.Init](data)
	if err != nil || msg.ID == "" {
		log.Printf("[SYNC] bad init frame: %v", err)
		return
	}
	s.clientID = msg.ID
	if s.state == StateConnecting {
		s.state = StateConnected
	}
}

func (s *Session) applyRoomConfirm(data []byte) {
	msg, err := protocol.DecodeAs[protocol.RoomConfirm](data)
	if err != nil {
		log.Printf("[SYNC] bad room confirm: %v", err)
		return
	}
	s.roomCode = msg.RoomCode
	s.hostID = msg.HostID
	s.state = StateInRoom
	// Members carry identities only; their positions arrive through the
	// regular pose stream.
	for _, id := range msg.Members {
		if id == s.clientID {
			continue
		}
		if s.tracker.AddPlayer(id) {
			s.renderer.SpawnEntity(ClassPlayer, id, Transform{Rotation: protocol.IdentityQuat})
		}
	}
}

func (s *Session) applyError(env protocol.Envelope, data []byte) frameResult {
	msg, err := protocol.DecodeAs[protocol.ErrorMessage](data)
	if err != nil {
		log.Printf("[SYNC] bad error frame: %v", err)
		return frameResult{env: env, dropped: true}
	}
	log.Printf("[SYNC] server error: %s", msg.Message)
	if s.onError != nil {
		s.onError(msg.Message)
	}
	return frameResult{env: env, errMessage: msg.Message}
}

func (s *Session) applyPlayerJoined(data []byte) {
	msg, err := protocol.DecodeAs[protocol.MemberNotice](data)
	if err != nil || msg.ID == "" || msg.ID == s.clientID {
		return
	}
	if s.tracker.AddPlayer(msg.ID) {
		s.renderer.SpawnEntity(ClassPlayer, msg.ID, Transform{Rotation: protocol.IdentityQuat})
	}
}

func (s *Session) applyPlayerLeft(data []byte) {
	msg, err := protocol.DecodeAs[protocol.MemberNotice](data)
	if err != nil {
		return
	}
	if s.tracker.RemovePlayer(msg.ID) {
		s.renderer.RemoveEntity(ClassPlayer, msg.ID)
	}
}

func (s *Session) applyHostChanged(data []byte) {
	msg, err := protocol.DecodeAs[protocol.MemberNotice](data)
	if err != nil || msg.ID == "" {
		return
	}
	s.hostID = msg.ID
}

func (s *Session) applyPosition(data []byte) {
	msg, err := protocol.DecodeAs[protocol.Position](data)
	if err != nil {
		return
	}
	id := msg.ID
	if id == "" {
		id = msg.SenderID
	}
	if id == "" || id == s.clientID {
		return
	}
	p, ok := s.tracker.players[id]
	if !ok {
		// Poses may race ahead of the membership notice.
		s.tracker.AddPlayer(id)
		s.renderer.SpawnEntity(ClassPlayer, id, Transform{Rotation: protocol.IdentityQuat})
		p = s.tracker.players[id]
	}
	p.target = msg.PlayerPose
	if !p.hasPose {
		// First pose snaps; interpolation starts from the second.
		p.current = msg.PlayerPose
		p.hasPose = true
	}
}

func (s *Session) applyBulletSpawned(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BulletSpawned](data)
	if err != nil || msg.ID == "" {
		return
	}
	b := &Bullet{
		ID:        msg.ID,
		OwnerID:   msg.SenderID,
		Origin:    msg.Position,
		Direction: msg.Direction.Normalized(),
		Speed:     msg.Speed,
		SpawnedAt: s.now(),
		Lifespan:  s.opts.BulletLifespan,
	}
	if s.tracker.AddBullet(b) {
		s.renderer.SpawnEntity(ClassBullet, b.ID, Transform{
			Position: b.Origin,
			Rotation: protocol.IdentityQuat,
		})
	}
}

func (s *Session) applyBulletHit(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BulletHit](data)
	if err != nil {
		return
	}
	// Removal of an already-gone bullet is a no-op: expiry and the hit
	// report race benignly.
	if _, ok := s.tracker.RemoveBullet(msg.ID); ok {
		s.renderer.RemoveEntity(ClassBullet, msg.ID)
	}
}

func (s *Session) applyBirdSpawned(env protocol.Envelope, data []byte) {
	if env.SenderID != "" && env.SenderID != s.hostID {
		log.Printf("[SYNC] rejecting birdSpawned from non-host %s", env.SenderID)
		return
	}
	msg, err := protocol.DecodeAs[protocol.BirdSpawned](data)
	if err != nil || msg.ID == "" {
		return
	}
	b := &Bird{
		ID: msg.ID,
		Orbit: OrbitParams{
			Origin:       msg.Origin,
			Radius:       msg.Radius,
			AngularSpeed: msg.AngularSpeed,
			BaseHeight:   msg.BaseHeight,
			BobAmplitude: msg.BobAmplitude,
			BobFrequency: msg.BobFrequency,
		},
		SpawnedAt: s.now(),
		Lifespan:  s.opts.BirdLifespan,
	}
	if s.tracker.AddBird(b) {
		s.renderer.SpawnEntity(ClassBird, b.ID, Transform{
			Position: OrbitPosition(b.Orbit, 0),
			Rotation: protocol.IdentityQuat,
		})
	}
}

func (s *Session) applyBirdUpdate(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BirdUpdate](data)
	if err != nil {
		return
	}
	b, ok := s.tracker.birds[msg.ID]
	if !ok {
		return
	}
	if rebased, changed := RebaseSpawnTime(b.SpawnedAt, s.now(), msg.Age); changed {
		b.SpawnedAt = rebased
	}
}

func (s *Session) applyBirdHit(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BirdHit](data)
	if err != nil {
		return
	}
	if b, ok := s.tracker.birds[msg.ID]; ok {
		b.Hits++
	}
}

func (s *Session) applyBirdKilled(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BirdKilled](data)
	if err != nil {
		return
	}
	// The shooter's client already emitted the scoreUpdate; observers only
	// remove the entity.
	if _, ok := s.tracker.RemoveBird(msg.ID); ok {
		s.renderer.RemoveEntity(ClassBird, msg.ID)
	}
}

func (s *Session) applyBirdRemoved(data []byte) {
	msg, err := protocol.DecodeAs[protocol.BirdRemoved](data)
	if err != nil {
		return
	}
	if _, ok := s.tracker.RemoveBird(msg.ID); ok {
		s.renderer.RemoveEntity(ClassBird, msg.ID)
	}
}

func (s *Session) applySphereSpawned(data []byte) {
	msg, err := protocol.DecodeAs[protocol.SphereSpawned](data)
	if err != nil || msg.ID == "" {
		return
	}
	if s.tracker.AddSphere(&Sphere{ID: msg.ID, Position: msg.Position, Radius: msg.Radius}) {
		s.renderer.SpawnEntity(ClassSphere, msg.ID, Transform{
			Position: msg.Position,
			Rotation: protocol.IdentityQuat,
		})
	}
}

func (s *Session) applySphereRemoved(data []byte) {
	msg, err := protocol.DecodeAs[protocol.SphereRemoved](data)
	if err != nil {
		return
	}
	if _, ok := s.tracker.RemoveSphere(msg.ID); ok {
		s.renderer.RemoveEntity(ClassSphere, msg.ID)
	}
}

func (s *Session) applyScoreUpdate(data []byte) {
	msg, err := protocol.DecodeAs[protocol.ScoreUpdate](data)
	if err != nil || msg.PlayerID == "" {
		return
	}
	s.scores.Apply(msg.PlayerID, msg.Total)
	s.emitScore(msg.PlayerID, msg.Total)
}

func (s *Session) applyGameStart(env protocol.Envelope, data []byte) {
	if env.SenderID != "" && env.SenderID != s.hostID {
		log.Printf("[SYNC] rejecting gameStart from non-host %s", env.SenderID)
		return
	}
	msg, err := protocol.DecodeAs[protocol.GameTimer](data)
	if err != nil {
		return
	}
	s.gameActive = true
	s.gameStartedAt = msg.StartTime
	if s.onGameStart != nil {
		s.onGameStart(msg.StartTime)
	}
}

func (s *Session) applyGameEnd(env protocol.Envelope) {
	if env.SenderID != "" && env.SenderID != s.hostID {
		log.Printf("[SYNC] rejecting gameEnd from non-host %s", env.SenderID)
		return
	}
	s.gameActive = false
	if s.onGameEnd != nil {
		s.onGameEnd()
	}
}
