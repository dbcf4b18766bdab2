package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/kajencik/3DMolecules/internal/automation"
	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/experiment"
	"github.com/kajencik/3DMolecules/internal/optim"
	"github.com/kajencik/3DMolecules/internal/storage"
)

var (
	sweepMin    float64
	sweepMax    float64
	sweepPoints int
	workers     int
	trials      int
	seedStart   int64
	grids       []string
	metricName  string
	maximize    bool
)

func automationCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0: one per cpu)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a configuration over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seedStart, "seed-start", 0, "seed of the first trial (0: time based)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0: one per cpu)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grids, "grid", nil, "parameter grid, e.g. --grid damping=0.1:1:4 (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "mean_height", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")

	return []*cobra.Command{sweepCmd, scenarioCmd, monteCarloCmd, tuneCmd}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Base:     cfg,
		Param:    args[0],
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepPoints,
		Workers:  workers,
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}
	fmt.Printf("sweep %s over %d values in %v\n\n", sweep.Param, len(results), time.Since(start))

	names := experiment.NewRegistry().ListMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "VALUE\tSTEPS\tCOLLISIONS")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", n)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%d\t%d", r.Value, r.StepsTaken, r.Collisions)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, base, experiment.NewRegistry())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tN\tSTEPS\tCOLLISIONS\tKE\tRUN")
	for i, r := range results {
		runID := "-"
		if r.Step.SaveAs != "" {
			if err := st.Init(); err != nil {
				return err
			}
			if runID, err = st.Save(r.Step.SaveAs, r.Config, r.Result); err != nil {
				return err
			}
		}
		label := r.Step.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4f\t%s\n",
			label, r.Config.Particles, r.Result.StepsTaken, r.Result.TotalCollisions(), r.Result.Metrics["kinetic_energy"], runID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		SeedStart: seedStart,
		Workers:   workers,
	}, registry)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%d trials: %d stable, %d unstable\n\n", len(results), stable, unstable)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV")
	for _, name := range registry.ListMetrics() {
		values := make([]float64, 0, len(results))
		for _, r := range results {
			if v, ok := r.Metrics[name]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(values, nil)
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", name, mean, std)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(grids) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(grids))
	ranges := make([][]float64, 0, len(grids))
	for _, g := range grids {
		name, values, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	search := optim.NewGridSearch(names, ranges)
	search.Maximize = maximize

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d combinations for %s...\n", search.Size(), metricName)
	best, val, err := search.Search(ctx, optim.ConfigBuilder(cfg, experiment.NewRegistry()), metricName)
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %.6f\n", metricName, val)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best[n])
	}
	return nil
}

func benchStepper(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("steps") {
		base.Steps = 120
	}
	base.SampleEvery = 0

	sizes := []int{50, 200, 800}
	if cmd.Flags().Changed("particles") {
		sizes = []int{base.Particles}
	}

	fmt.Printf("benchmarking %d steps on %d cpus\n\n", base.Steps, runtime.NumCPU())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

	for _, n := range sizes {
		cfg := *base
		cfg.Particles = n
		exp := experiment.New(&cfg, nil)
		if err := exp.Setup(nil); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		pairs := 0
		for _, s := range result.Steps {
			pairs += s.Diagnostics.PairChecks
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.0f\n",
			n, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds(), float64(pairs)/elapsed.Seconds())
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN\tSTEPS\tVISCOSITY\tCOHESION\tDAMPING\tRESTITUTION\tTILT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%g\t%g\t%g\t%s\n",
			name, p.Particles, p.Steps, p.Physics.Viscosity, p.Physics.Cohesion, p.Physics.Damping, p.Physics.Restitution, p.Tilt.Mode)
	}
	return w.Flush()
}
