package sync

import (
	"math"
	"testing"

	"github.com/skyshot-game/skyshot/game/protocol"
)

func TestBlendPoseConverges(t *testing.T) {
	current := protocol.PlayerPose{Position: protocol.Vec3{0, 0, 0}}
	target := protocol.PlayerPose{
		Position:     protocol.Vec3{10, 0, 0},
		HeadRotation: protocol.IdentityQuat,
	}

	for i := 0; i < 100; i++ {
		current = BlendPose(current, target, DefaultInterpFactor)
	}
	if current.Position.Dist(target.Position) > 0.01 {
		t.Errorf("pose did not converge: %v vs %v", current.Position, target.Position)
	}
}

func TestBlendPoseSingleStep(t *testing.T) {
	current := protocol.PlayerPose{Position: protocol.Vec3{0, 0, 0}}
	target := protocol.PlayerPose{Position: protocol.Vec3{10, 20, 30}}

	got := BlendPose(current, target, 0.5)
	want := protocol.Vec3{5, 10, 15}
	if !vecsClose(got.Position, want, floatTol) {
		t.Errorf("blended position = %v, want %v", got.Position, want)
	}
}

func TestBlendPoseRotationNormalized(t *testing.T) {
	current := protocol.PlayerPose{HeadRotation: protocol.IdentityQuat}
	// 180 degrees around y.
	target := protocol.PlayerPose{HeadRotation: protocol.Quat{0, 1, 0, 0}}

	got := BlendPose(current, target, 0.3).HeadRotation
	n := math.Sqrt(got[0]*got[0] + got[1]*got[1] + got[2]*got[2] + got[3]*got[3])
	if math.Abs(n-1) > floatTol {
		t.Errorf("blended rotation norm = %v, want 1", n)
	}
}

func TestBlendPoseAdoptsNewControllers(t *testing.T) {
	current := protocol.PlayerPose{}
	target := protocol.PlayerPose{
		Controllers: []protocol.ControllerPose{
			{Position: protocol.Vec3{1, 2, 3}, Rotation: protocol.IdentityQuat},
			{Position: protocol.Vec3{4, 5, 6}, Rotation: protocol.IdentityQuat},
		},
	}

	got := BlendPose(current, target, 0.2)
	if len(got.Controllers) != 2 {
		t.Fatalf("controllers = %d, want 2", len(got.Controllers))
	}
	// No prior state to blend from: new controllers snap to the target.
	if !vecsClose(got.Controllers[1].Position, target.Controllers[1].Position, floatTol) {
		t.Errorf("new controller position = %v, want %v",
			got.Controllers[1].Position, target.Controllers[1].Position)
	}
}
