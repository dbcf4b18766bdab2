package sim

import (
	"context"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
)

// Simulator drives a Stepper over a population. It is not safe for
// concurrent use; parameter changes happen between Run or Tick calls.
type Simulator struct {
	stepper   *physics.Stepper
	params    physics.Params
	frames    FrameProvider
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(stepper *physics.Stepper, params physics.Params, frames FrameProvider) *Simulator {
	if stepper == nil {
		stepper = physics.NewStepper()
	}
	if frames == nil {
		frames = NoTilt{}
	}
	return &Simulator{
		stepper:   stepper,
		params:    params,
		frames:    frames,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() physics.Params { return s.params }

// SetParams replaces the parameter snapshot after validating it.
func (s *Simulator) SetParams(p physics.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

func (s *Simulator) SetFrames(fp FrameProvider) {
	if fp == nil {
		fp = NoTilt{}
	}
	s.frames = fp
}

func (s *Simulator) Frames() FrameProvider { return s.frames }

func (s *Simulator) GetParams() map[string]float64 { return s.params.GetParams() }

func (s *Simulator) SetParam(name string, value float64) error {
	next, err := s.params.With(name, value)
	if err != nil {
		return err
	}
	return s.SetParams(next)
}

// Run steps a copy of particles cfg.Steps times. On cancellation it returns
// the partial result together with ctx.Err(). With ValidateState the run
// stops at the first non-finite particle and records the failure in
// Result.Errors.
func (s *Simulator) Run(ctx context.Context, particles []dynamo.Particle, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	frames := 2
	if cfg.SampleEvery > 0 {
		frames += cfg.Steps / cfg.SampleEvery
	}
	result := &Result{
		Frames:  make([]dynamo.Snapshot, 0, frames),
		Steps:   make([]StepRecord, 0, cfg.Steps),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	ps := dynamo.CloneParticles(particles)
	result.Frames = append(result.Frames, snapshot(0, 0, ps))
	lastSampled := 0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, ps, lastSampled)
			return result, ctx.Err()
		default:
		}

		step := i + 1
		t := float64(step) * cfg.Dt
		d := s.advance(ps, float64(i)*cfg.Dt, cfg.Dt)

		result.StepsTaken++
		result.Steps = append(result.Steps, StepRecord{Step: step, Time: t, Diagnostics: d})

		if cfg.ValidateState && !dynamo.ParticlesValid(ps) {
			err := &dynamo.SimulationError{Step: step, Time: t, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(ps, d, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(ps, d, t)
		}

		if cfg.SampleEvery > 0 && step%cfg.SampleEvery == 0 {
			result.Frames = append(result.Frames, snapshot(step, t, ps))
			lastSampled = step
		}
	}

	s.finish(result, ps, lastSampled)
	return result, nil
}

// Tick advances particles in place by one step starting at time t and
// notifies observers. Metrics are left to Run.
func (s *Simulator) Tick(particles []dynamo.Particle, t, dt float64) dynamo.Diagnostics {
	d := s.advance(particles, t, dt)
	for _, obs := range s.observers {
		obs.OnStep(particles, d, t+dt)
	}
	return d
}

func (s *Simulator) advance(ps []dynamo.Particle, t, dt float64) dynamo.Diagnostics {
	return s.stepper.Step(ps, s.params, s.frames.FrameAt(t), dt)
}

func (s *Simulator) finish(result *Result, ps []dynamo.Particle, lastSampled int) {
	if result.StepsTaken > lastSampled {
		t := 0.0
		if n := len(result.Steps); n > 0 {
			t = result.Steps[n-1].Time
		}
		result.Frames = append(result.Frames, snapshot(result.StepsTaken, t, ps))
	}
	result.Final = ps
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func snapshot(step int, t float64, ps []dynamo.Particle) dynamo.Snapshot {
	return dynamo.Snapshot{Step: step, Time: t, Particles: dynamo.CloneParticles(ps)}
}
