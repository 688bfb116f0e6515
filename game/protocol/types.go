package protocol

import "math"

// Vec3 is a 3D vector. It marshals to a JSON array [x, y, z].
type Vec3 [3]float64

func (v Vec3) X() float64 { return v[0] }
func (v Vec3) Y() float64 { return v[1] }
func (v Vec3) Z() float64 { return v[2] }

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Lerp returns the linear interpolation between v and w at t in [0,1].
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		v[0] + (w[0]-v[0])*t,
		v[1] + (w[1]-v[1])*t,
		v[2] + (w[2]-v[2])*t,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalized returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Dist returns the distance between v and w.
func (v Vec3) Dist(w Vec3) float64 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}.Norm()
}

// Quat is a rotation quaternion. It marshals to a JSON array [x, y, z, w].
type Quat [4]float64

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{0, 0, 0, 1}

// Nlerp returns the normalized linear interpolation between q and r at t.
// It takes the shortest arc by flipping r when the dot product is negative.
func (q Quat) Nlerp(r Quat, t float64) Quat {
	dot := q[0]*r[0] + q[1]*r[1] + q[2]*r[2] + q[3]*r[3]
	if dot < 0 {
		r = Quat{-r[0], -r[1], -r[2], -r[3]}
	}
	out := Quat{
		q[0] + (r[0]-q[0])*t,
		q[1] + (r[1]-q[1])*t,
		q[2] + (r[2]-q[2])*t,
		q[3] + (r[3]-q[3])*t,
	}
	n := math.Sqrt(out[0]*out[0] + out[1]*out[1] + out[2]*out[2] + out[3]*out[3])
	if n == 0 {
		return IdentityQuat
	}
	return Quat{out[0] / n, out[1] / n, out[2] / n, out[3] / n}
}

// ControllerPose is the transform of one VR controller.
type ControllerPose struct {
	Position Vec3 `json:"position"`
	Rotation Quat `json:"rotation"`
}

// PlayerPose is the full streamed pose of a player: body position, head
// transform, and both controllers.
type PlayerPose struct {
	Position     Vec3             `json:"position"`
	HeadPosition Vec3             `json:"headPosition"`
	HeadRotation Quat             `json:"headRotation"`
	Controllers  []ControllerPose `json:"controllers,omitempty"`
}
