package physics

import (
	"math"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// DefaultParallelThreshold is the population size above which the
// per-particle integration pass is split across goroutines.
const DefaultParallelThreshold = 512

// Stepper advances a particle population one time step at a time. It keeps
// the counters of the most recent step and nothing else.
type Stepper struct {
	// ParallelThreshold controls the integration pass; zero or negative
	// keeps it on the calling goroutine.
	ParallelThreshold int

	diag dynamo.Diagnostics
}

// NewStepper returns a Stepper with the default parallel threshold.
func NewStepper() *Stepper {
	return &Stepper{ParallelThreshold: DefaultParallelThreshold}
}

// Step mutates particles in place: integration and boundary per particle,
// then soft forces and collisions per unordered pair, then damping and the
// speed clamp. It never fails; degenerate geometry falls back to fixed axes.
func (s *Stepper) Step(particles []dynamo.Particle, params Params, f Frame, dt float64) dynamo.Diagnostics {
	if f == nil {
		f = Identity{}
	}
	s.diag = dynamo.Diagnostics{}

	integrate := func(start, end int) {
		for i := start; i < end; i++ {
			advance(&particles[i], params, f, dt)
		}
	}
	if s.ParallelThreshold > 0 {
		dynamo.ParallelFor(len(particles), s.ParallelThreshold, integrate)
	} else {
		integrate(0, len(particles))
	}

	n := len(particles)
	for i := 0; i < n; i++ {
		a := &particles[i]
		for j := i + 1; j < n; j++ {
			b := &particles[j]
			s.diag.PairChecks++
			interact(a, b, params, dt)
			if collide(a, b, params) {
				s.diag.Collisions++
			}
		}
	}

	damp(particles, params, dt)
	return s.diag
}

// Diagnostics returns the counters of the last Step call.
func (s *Stepper) Diagnostics() dynamo.Diagnostics {
	return s.diag
}

func advance(p *dynamo.Particle, params Params, f Frame, dt float64) {
	p.Velocity[2] += params.Gravity * dt
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	p.RotationAngle += math.Max(p.RotationSpeed, params.MinRotationSpeed) * dt
	enforceBoundary(p, params, f)
}

func damp(particles []dynamo.Particle, params Params, dt float64) {
	factor := math.Max(0, 1-params.LinearDamping*dt)
	clamp := !math.IsInf(params.MaxSpeed, 1)

	for i := range particles {
		v := particles[i].Velocity.Mul(factor)
		if clamp {
			if speed := v.Len(); speed > params.MaxSpeed {
				v = v.Mul(params.MaxSpeed / speed)
			}
		}
		particles[i].Velocity = v
	}
}
