package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// KineticEnergy averages the mean per-particle kinetic energy ½|v|² (unit
// mass) over observed steps.
type KineticEnergy struct {
	name    string
	samples []float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(ps []dynamo.Particle, d dynamo.Diagnostics, t float64) {
	e.samples = append(e.samples, Kinetic(ps))
}

func (e *KineticEnergy) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

// Last returns the most recent observation.
func (e *KineticEnergy) Last() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return e.samples[len(e.samples)-1]
}

func (e *KineticEnergy) Reset() { e.samples = e.samples[:0] }

// Kinetic returns the mean ½|v|² of ps, or 0 for an empty population.
func Kinetic(ps []dynamo.Particle) float64 {
	if len(ps) == 0 {
		return 0
	}
	total := 0.0
	for i := range ps {
		v := ps[i].Velocity
		total += 0.5 * v.Dot(v)
	}
	return total / float64(len(ps))
}
