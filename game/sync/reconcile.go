package sync

import (
	"math"
	"time"

	"github.com/skyshot-game/skyshot/game/protocol"
)

// RebaseTolerance is the age discrepancy beyond which a host correction
// rebases an entity's effective spawn time. Discrepancies below it are
// ordinary jitter from variable frame timing and are left alone.
const RebaseTolerance = time.Second

// OrbitParams are the one-time spawn parameters from which every client
// reproduces a bird's motion as a pure function of age.
type OrbitParams struct {
	Origin       protocol.Vec3
	Radius       float64
	AngularSpeed float64
	BaseHeight   float64
	BobAmplitude float64
	BobFrequency float64
}

// OrbitPosition evaluates the parametric orbit at the given age in
// seconds: a horizontal circle around the origin plus a vertical
// sinusoidal bob. Identical inputs produce identical coordinates on every
// client, so positions converge without per-frame traffic.
func OrbitPosition(p OrbitParams, age float64) protocol.Vec3 {
	return protocol.Vec3{
		p.Origin[0] + p.Radius*math.Cos(p.AngularSpeed*age),
		p.Origin[1] + p.BaseHeight + p.BobAmplitude*math.Sin(p.BobFrequency*age),
		p.Origin[2] + p.Radius*math.Sin(p.AngularSpeed*age),
	}
}

// LinearPosition evaluates straight-line motion at the given age in
// seconds. Direction is normalized so peers disagree only on what the
// spawn message carried, never on the math.
func LinearPosition(origin, direction protocol.Vec3, speed, age float64) protocol.Vec3 {
	return origin.Add(direction.Normalized().Scale(speed * age))
}

// RebaseSpawnTime reconciles a locally recorded spawn time against an age
// reported by the entity's authority. When the discrepancy exceeds
// RebaseTolerance the spawn time is rebased so local age matches the
// report; otherwise it is returned unchanged.
func RebaseSpawnTime(spawnedAt, now time.Time, reportedAge float64) (time.Time, bool) {
	localAge := now.Sub(spawnedAt).Seconds()
	if math.Abs(localAge-reportedAge) <= RebaseTolerance.Seconds() {
		return spawnedAt, false
	}
	return now.Add(-time.Duration(reportedAge * float64(time.Second))), true
}
