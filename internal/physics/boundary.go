package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// enforceBoundary keeps p inside the vessel. The test runs in the vessel's
// local frame so the cylinder stays axis-aligned whatever the tilt.
func enforceBoundary(p *dynamo.Particle, params Params, f Frame) {
	rMax := params.EffectiveRadius()
	zMax := params.EffectiveHalfHeight()

	pos := f.ToLocal(p.Position)
	vel := f.ToLocal(p.Velocity)

	// radial wall
	r := math.Hypot(pos[0], pos[1])
	if r > rMax {
		n := mgl64.Vec3{pos[0] / r, pos[1] / r, 0}
		vel = vel.Sub(n.Mul(2 * vel.Dot(n)))
		pos[0] = n[0] * rMax
		pos[1] = n[1] * rMax
	}

	// caps
	if pos[2] > zMax {
		vel[2] = -math.Abs(vel[2])
		pos[2] = zMax
	} else if pos[2] < -zMax {
		vel[2] = math.Abs(vel[2])
		pos[2] = -zMax
	}

	p.Position = f.ToWorld(pos)
	p.Velocity = f.ToWorld(vel)
}

// Contains reports whether a world-space point lies within the effective
// vessel extents for frame f.
func Contains(params Params, f Frame, world mgl64.Vec3) bool {
	const slack = 1e-9
	pos := f.ToLocal(world)
	return math.Hypot(pos[0], pos[1]) <= params.EffectiveRadius()+slack &&
		math.Abs(pos[2]) <= params.EffectiveHalfHeight()+slack
}
