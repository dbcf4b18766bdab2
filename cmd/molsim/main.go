package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/experiment"
	"github.com/kajencik/3DMolecules/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	particles   int
	seed        int64
	steps       int
	dt          float64
	sampleEvery int
	tiltMode    string
	tiltX       float64
	tiltY       float64
	tiltPeriod  float64
	sets        []string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("molsim: ")

	rootCmd := &cobra.Command{
		Use:          "molsim",
		Short:        "molecules in a tilting cylindrical vessel",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(config.DefaultConfig(), experiment.NewRegistry())
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".molsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper across population sizes",
		Args:  cobra.NoArgs,
		RunE:  benchStepper,
	}
	addConfigFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, presetsCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(automationCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers the flags every simulating command accepts.
// Explicit flags override preset, file and environment.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.IntVarP(&particles, "particles", "n", config.DefaultParticles, "number of molecules")
	f.Int64Var(&seed, "seed", config.DefaultSeed, "random seed for the initial population")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record a frame every n steps (0: first and last only)")
	f.StringVar(&tiltMode, "tilt", config.TiltNone, "tilt mode: none, static or rocking")
	f.Float64Var(&tiltX, "tilt-x", 0, "tilt about x in radians")
	f.Float64Var(&tiltY, "tilt-y", 0, "tilt about y in radians")
	f.Float64Var(&tiltPeriod, "period", 0, "rocking period in seconds")
	f.StringArrayVar(&sets, "set", nil, "override a parameter, e.g. --set viscosity=1.2 (repeatable)")
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("particles") {
		cfg.Particles = particles
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("tilt") {
		cfg.Tilt.Mode = tiltMode
	}
	if f.Changed("tilt-x") {
		cfg.Tilt.AngleX = tiltX
	}
	if f.Changed("tilt-y") {
		cfg.Tilt.AngleY = tiltY
	}
	if f.Changed("period") {
		cfg.Tilt.Period = tiltPeriod
	}
	for _, s := range sets {
		name, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAssignment splits "name=value".
func parseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return name, v, nil
}

// parseGrid splits "name=min:max:n" into the name and n evenly spaced values.
func parseGrid(s string) (string, []float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("expected name=min:max:n, got %q", s)
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("expected name=min:max:n, got %q", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s min: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s max: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("%s: invalid point count %q", name, parts[2])
	}
	if n == 1 {
		return name, []float64{lo}, nil
	}
	return name, floats.Span(make([]float64, n), lo, hi), nil
}

// signalContext is cancelled on interrupt so long runs stop between steps.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, experiment.NewRegistry())
	if err := exp.Setup(nil); err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = "molsim"
	}
	return viz.RunLive(name, exp)
}
