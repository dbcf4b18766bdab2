package automation

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/experiment"
)

// MonteCarloConfig repeats one configuration over consecutive seeds.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	// SeedStart of zero picks a time-based start.
	SeedStart int64
	Workers   int
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Metrics map[string]float64
	Stable  bool // every particle stayed finite
}

// RunMonteCarlo executes independent trials that differ only in the seed of
// the initial population.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}

	seedStart := cfg.SeedStart
	if seedStart == 0 {
		seedStart = time.Now().UnixNano()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		trial := trial
		g.Go(func() error {
			trialCfg := *cfg.Base
			trialCfg.Seed = seedStart + int64(trial)

			exp := experiment.New(&trialCfg, registry)
			if err := exp.Setup(registry.DefaultMetrics()); err != nil {
				return err
			}
			result, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}

			results[trial] = MonteCarloResult{
				TrialID: trial,
				Seed:    trialCfg.Seed,
				Metrics: result.Metrics,
				Stable:  len(result.Errors) == 0 && dynamo.ParticlesValid(result.Final),
			}
			if (trial+1)%10 == 0 {
				log.Printf("monte carlo: trial %d/%d complete", trial+1, cfg.NumTrials)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
