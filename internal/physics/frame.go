package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// Frame maps vectors between world space and the vessel's local frame.
// It is either Identity or Tilted.
type Frame interface {
	ToLocal(v mgl64.Vec3) mgl64.Vec3
	ToWorld(v mgl64.Vec3) mgl64.Vec3
	frame()
}

// Identity is the untilted vessel.
type Identity struct{}

func (Identity) ToLocal(v mgl64.Vec3) mgl64.Vec3 { return v }
func (Identity) ToWorld(v mgl64.Vec3) mgl64.Vec3 { return v }
func (Identity) frame()                          {}

// Tilted is a rigid rotation of the vessel and its inverse.
type Tilted struct {
	rot mgl64.Mat3
	inv mgl64.Mat3
}

// NewTilted builds a frame from a rotation matrix. The inverse is the
// transpose, so rot must be orthonormal.
func NewTilted(rot mgl64.Mat3) Tilted {
	return Tilted{rot: rot, inv: rot.Transpose()}
}

// TiltXY rotates the vessel by angleX about world x, then angleY about
// world y. Zero angles give Identity.
func TiltXY(angleX, angleY float64) Frame {
	if angleX == 0 && angleY == 0 {
		return Identity{}
	}
	return NewTilted(mgl64.Rotate3DY(angleY).Mul3(mgl64.Rotate3DX(angleX)))
}

// TiltAbout rotates the vessel by angle radians about axis.
func TiltAbout(axis mgl64.Vec3, angle float64) Frame {
	if angle == 0 || axis.Len() < dynamo.NormalizeEpsilon {
		return Identity{}
	}
	q := mgl64.QuatRotate(angle, axis.Normalize())
	return NewTilted(q.Mat4().Mat3())
}

func (f Tilted) ToLocal(v mgl64.Vec3) mgl64.Vec3 { return f.inv.Mul3x1(v) }
func (f Tilted) ToWorld(v mgl64.Vec3) mgl64.Vec3 { return f.rot.Mul3x1(v) }
func (Tilted) frame()                            {}

// Rotation returns the forward rotation.
func (f Tilted) Rotation() mgl64.Mat3 { return f.rot }

// Up returns the vessel's local +z axis in world space.
func Up(f Frame) mgl64.Vec3 {
	return f.ToWorld(dynamo.AxisZ)
}
