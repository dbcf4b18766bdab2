package metrics

import "github.com/kajencik/3DMolecules/internal/dynamo"

// Stability is the fraction of steps in which every particle is finite and
// moves slower than the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(ps []dynamo.Particle, d dynamo.Diagnostics, t float64) {
	s.samples++
	for i := range ps {
		if !ps[i].IsValid() || ps[i].Speed() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
