package physics

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// Source produces well-formed particles.
type Source interface {
	NewParticle() dynamo.Particle
}

// SpawnConfig bounds the random initial state of new particles.
type SpawnConfig struct {
	VelocityRange    float64
	RotationSpeedMin float64
	RotationSpeedMax float64
}

// DefaultSpawnConfig returns the initial velocity and spin ranges.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		VelocityRange:    0.5,
		RotationSpeedMin: 0.5,
		RotationSpeedMax: 3.0,
	}
}

// Factory draws particles uniformly inside the vessel minus its margin.
// All randomness comes from the injected source.
type Factory struct {
	rng    *rand.Rand
	vessel Vessel
	spawn  SpawnConfig
}

// NewFactory draws from rng, which must not be shared across goroutines.
func NewFactory(rng *rand.Rand, vessel Vessel, spawn SpawnConfig) *Factory {
	return &Factory{rng: rng, vessel: vessel, spawn: spawn}
}

// NewSeededFactory is NewFactory with a fresh source seeded by seed.
func NewSeededFactory(seed int64, vessel Vessel, spawn SpawnConfig) *Factory {
	return NewFactory(rand.New(rand.NewSource(seed)), vessel, spawn)
}

func (f *Factory) NewParticle() dynamo.Particle {
	maxR := math.Max(0, f.vessel.Radius-f.vessel.Margin)
	maxH := math.Max(0, f.vessel.HalfHeight-f.vessel.Margin)

	// Rejection keeps the square sample inside the circular cross-section.
	var x, y float64
	for {
		x = f.uniform(-maxR, maxR)
		y = f.uniform(-maxR, maxR)
		if x*x+y*y <= maxR*maxR {
			break
		}
	}

	vr := f.spawn.VelocityRange
	axis := mgl64.Vec3{f.rng.NormFloat64(), f.rng.NormFloat64(), f.rng.NormFloat64()}

	return dynamo.Particle{
		Position:      mgl64.Vec3{x, y, f.uniform(-maxH, maxH)},
		Velocity:      mgl64.Vec3{f.uniform(-vr, vr), f.uniform(-vr, vr), f.uniform(-vr, vr)},
		RotationAxis:  dynamo.NormalizeOr(axis, dynamo.AxisZ),
		RotationSpeed: f.uniform(f.spawn.RotationSpeedMin, f.spawn.RotationSpeedMax),
		RotationAngle: f.uniform(0, 2*math.Pi),
	}
}

func (f *Factory) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// Populate creates n particles from src.
func Populate(src Source, n int) []dynamo.Particle {
	ps := make([]dynamo.Particle, 0, n)
	for i := 0; i < n; i++ {
		ps = append(ps, src.NewParticle())
	}
	return ps
}

// Resize grows the population with particles from src or shrinks it by
// dropping the most recently created ones from the end.
func Resize(ps []dynamo.Particle, n int, src Source) []dynamo.Particle {
	if n < 0 {
		n = 0
	}
	if n <= len(ps) {
		return ps[:n]
	}
	for len(ps) < n {
		ps = append(ps, src.NewParticle())
	}
	return ps
}
