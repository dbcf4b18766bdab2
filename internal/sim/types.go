package sim

import (
	"fmt"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// Config controls a single batch run.
type Config struct {
	Dt    float64
	Steps int
	// SampleEvery records a snapshot every n steps. Zero keeps only the
	// initial and final populations.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Steps:         600,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Duration is the simulated time covered by the configured steps.
func (c Config) Duration() float64 { return float64(c.Steps) * c.Dt }

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", dynamo.ErrParameterBounds, cfg.SampleEvery)
	}
	return nil
}

// StepRecord is the diagnostics of one completed step.
type StepRecord struct {
	Step        int
	Time        float64
	Diagnostics dynamo.Diagnostics
}

type Result struct {
	Frames     []dynamo.Snapshot
	Steps      []StepRecord
	Final      []dynamo.Particle
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// TotalCollisions sums the collision counter over every recorded step.
func (r *Result) TotalCollisions() int {
	total := 0
	for _, s := range r.Steps {
		total += s.Diagnostics.Collisions
	}
	return total
}

// Times returns the end time of each recorded step.
func (r *Result) Times() []float64 {
	ts := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		ts[i] = s.Time
	}
	return ts
}

// CollisionSeries returns the per-step collision counts as floats.
func (r *Result) CollisionSeries() []float64 {
	cs := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		cs[i] = float64(s.Diagnostics.Collisions)
	}
	return cs
}
