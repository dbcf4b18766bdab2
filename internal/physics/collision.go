package physics

import "github.com/kajencik/3DMolecules/internal/dynamo"

// RotationChangeScale converts the tangential contact term of a collision
// into added spin speed.
const RotationChangeScale = 0.1

// collide resolves hard-sphere overlap between a and b and reports whether
// the pair overlapped. Masses are equal.
func collide(a, b *dynamo.Particle, params Params) bool {
	minDist := 2 * params.CollisionRadius
	delta := a.Position.Sub(b.Position)
	if delta.Dot(delta) >= minDist*minDist {
		return false
	}

	n := dynamo.NormalizeOr(delta, dynamo.AxisX)
	relV := a.Velocity.Sub(b.Velocity)

	// Separating pairs keep their velocities.
	if vn := relV.Dot(n); vn <= 0 {
		j := -(1 + params.Restitution) * vn / 2
		a.Velocity = a.Velocity.Add(n.Mul(j))
		b.Velocity = b.Velocity.Sub(n.Mul(j))
	}

	correction := n.Mul(params.Separation)
	a.Position = a.Position.Add(correction)
	b.Position = b.Position.Sub(correction)

	spin := relV.Cross(n)
	a.RotationAxis = dynamo.NormalizeOr(a.RotationAxis.Add(spin), dynamo.AxisZ)
	b.RotationAxis = dynamo.NormalizeOr(b.RotationAxis.Sub(spin), dynamo.AxisZ)
	gain := spin.Len() * RotationChangeScale
	a.RotationSpeed += gain
	b.RotationSpeed += gain

	return true
}
