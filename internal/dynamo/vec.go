package dynamo

import "github.com/go-gl/mathgl/mgl64"

// NormalizeEpsilon is the length below which a vector is treated as zero.
const NormalizeEpsilon = 1e-9

var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// NormalizeOr returns v scaled to unit length, or fallback when v is too
// short to carry a stable direction.
func NormalizeOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < NormalizeEpsilon {
		return fallback
	}
	return v.Mul(1 / l)
}
