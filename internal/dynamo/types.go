package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is a single molecule. RotationAxis is always unit length or one of
// the fallback axes; RotationAngle accumulates without wrapping.
type Particle struct {
	Position      mgl64.Vec3
	Velocity      mgl64.Vec3
	RotationAxis  mgl64.Vec3
	RotationSpeed float64
	RotationAngle float64
}

// Speed returns the magnitude of the particle's velocity.
func (p Particle) Speed() float64 { return p.Velocity.Len() }

// IsValid reports whether every component of the particle is finite.
func (p Particle) IsValid() bool {
	for _, v := range [...]mgl64.Vec3{p.Position, p.Velocity, p.RotationAxis} {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
	}
	return !math.IsNaN(p.RotationSpeed) && !math.IsNaN(p.RotationAngle)
}

// CloneParticles returns an independent copy of ps.
func CloneParticles(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}

// ParticlesValid reports whether no particle carries NaN or Inf state.
func ParticlesValid(ps []Particle) bool {
	for i := range ps {
		if !ps[i].IsValid() {
			return false
		}
	}
	return true
}

// Diagnostics holds the counters of a single step.
type Diagnostics struct {
	PairChecks int
	Collisions int
}

func (d Diagnostics) String() string {
	return fmt.Sprintf("checks=%d collisions=%d", d.PairChecks, d.Collisions)
}

// Snapshot is a copy of the population taken after a step.
type Snapshot struct {
	Step      int
	Time      float64
	Particles []Particle
}

type Metric interface {
	Name() string
	Observe(ps []Particle, d Diagnostics, t float64)
	Value() float64
	Reset()
}

// Observer receives the population after every step. Observers must not
// write back into the slice.
type Observer interface {
	OnStep(ps []Particle, d Diagnostics, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
