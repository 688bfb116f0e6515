package sync

import "github.com/skyshot-game/skyshot/game/protocol"

// DefaultInterpFactor is the per-frame blend factor for remote player
// poses. Exponential smoothing bounds visual jitter from bursty or
// reordered delivery without a jitter buffer.
const DefaultInterpFactor = 0.2

// BlendPose moves current toward target by the given factor. Positions
// lerp; rotations nlerp along the shortest arc. Controller lists blend
// pairwise, with any extra target controllers adopted as-is (a peer may
// pick up a second controller mid-session).
func BlendPose(current, target protocol.PlayerPose, factor float64) protocol.PlayerPose {
	out := protocol.PlayerPose{
		Position:     current.Position.Lerp(target.Position, factor),
		HeadPosition: current.HeadPosition.Lerp(target.HeadPosition, factor),
		HeadRotation: current.HeadRotation.Nlerp(target.HeadRotation, factor),
	}

	n := len(target.Controllers)
	if n == 0 {
		return out
	}
	out.Controllers = make([]protocol.ControllerPose, n)
	for i := 0; i < n; i++ {
		if i < len(current.Controllers) {
			out.Controllers[i] = protocol.ControllerPose{
				Position: current.Controllers[i].Position.Lerp(target.Controllers[i].Position, factor),
				Rotation: current.Controllers[i].Rotation.Nlerp(target.Controllers[i].Rotation, factor),
			}
		} else {
			out.Controllers[i] = target.Controllers[i]
		}
	}
	return out
}
