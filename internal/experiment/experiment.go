package experiment

import (
	"context"
	"fmt"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/sim"
)

// Experiment is one configured run: a seeded population, a stepper and
// the frame provider picked by the tilt mode.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	factory   *physics.Factory
	particles []dynamo.Particle
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg, registry: registry}
}

func (e *Experiment) Setup(metrics []dynamo.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	frames, err := e.registry.GetFrameProvider(e.cfg.Tilt)
	if err != nil {
		return err
	}

	params := e.cfg.Params()
	e.factory = physics.NewSeededFactory(e.cfg.Seed, params.Vessel, e.cfg.SpawnParams())
	e.particles = physics.Populate(e.factory, e.cfg.Particles)

	e.simulator = sim.New(physics.NewStepper(), params, frames)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.particles, e.cfg.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Particles returns the initial population created by Setup.
func (e *Experiment) Particles() []dynamo.Particle { return e.particles }

func (e *Experiment) Factory() *physics.Factory { return e.factory }

func (e *Experiment) Config() *config.Config { return e.cfg }
