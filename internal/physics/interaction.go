package physics

import (
	"math"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// coincidentDist2 is the squared distance below which a pair has no stable
// direction for soft forces.
const coincidentDist2 = 1e-12

// interact applies the soft forces between a and b: repulsion inside the
// preferred spacing, cohesion beyond it, and viscosity over the whole
// interaction radius. Impulses are symmetric.
func interact(a, b *dynamo.Particle, params Params, dt float64) {
	h := params.InteractionRadius
	delta := b.Position.Sub(a.Position)
	d2 := delta.Dot(delta)
	if d2 > h*h || d2 < coincidentDist2 {
		return
	}

	dist := math.Sqrt(d2)
	n := delta.Mul(1 / dist)
	spacing := params.PreferredSpacing

	if dist < spacing {
		q := 1 - dist/spacing
		mag := q*params.StiffnessFar + q*q*params.StiffnessNear
		impulse := n.Mul(mag * dt)
		a.Velocity = a.Velocity.Sub(impulse)
		b.Velocity = b.Velocity.Add(impulse)
	} else if h > spacing {
		q := math.Max(0, 1-(dist-spacing)/(h-spacing))
		if q > 0 {
			impulse := n.Mul(params.Cohesion * q * dt)
			a.Velocity = a.Velocity.Add(impulse)
			b.Velocity = b.Velocity.Sub(impulse)
		}
	}

	// XSPH-style velocity smoothing
	w := math.Max(0, 1-dist/h)
	relV := b.Velocity.Sub(a.Velocity)
	smooth := relV.Mul(params.Viscosity * w * dt)
	a.Velocity = a.Velocity.Add(smooth)
	b.Velocity = b.Velocity.Sub(smooth)
}
