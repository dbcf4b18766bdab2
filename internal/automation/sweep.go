package automation

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/experiment"
)

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	// Workers bounds concurrent runs; zero or negative uses every CPU.
	Workers int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value      float64
	Metrics    map[string]float64
	Collisions int
	StepsTaken int
}

// Values returns the swept parameter values, evenly spaced and inclusive.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.Min}
	}
	return floats.Span(make([]float64, s.NumSteps), s.Min, s.Max)
}

// RunSweep executes a parameter sweep. Each value gets its own population
// and stepper; results come back in value order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	probe := *sweep.Base
	if err := probe.SetParam(sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	values := sweep.Values()
	results := make([]SweepResult, len(values))

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			cfg := *sweep.Base
			if err := cfg.SetParam(sweep.Param, v); err != nil {
				return err
			}

			exp := experiment.New(&cfg, registry)
			if err := exp.Setup(registry.DefaultMetrics()); err != nil {
				return fmt.Errorf("%s=%.4f: %w", sweep.Param, v, err)
			}
			result, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("%s=%.4f: %w", sweep.Param, v, err)
			}

			results[i] = SweepResult{
				Value:      v,
				Metrics:    result.Metrics,
				Collisions: result.TotalCollisions(),
				StepsTaken: result.StepsTaken,
			}
			log.Printf("sweep %d/%d: %s=%.4f", i+1, len(values), sweep.Param, v)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
