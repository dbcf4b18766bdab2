package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kajencik/3DMolecules/internal/analysis"
	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/experiment"
	"github.com/kajencik/3DMolecules/internal/export"
	"github.com/kajencik/3DMolecules/internal/metrics"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/storage"
)

var (
	outFile    string
	frameIndex int
	seriesSVG  bool
	axisName   string
)

func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot collisions, energy and height of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with diagnostics and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a recorded frame, or the collision series, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index, negative counts from the end")
	exportSVGCmd.Flags().BoolVar(&seriesSVG, "series", false, "plot collisions per step instead of a frame")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the centre of mass",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&axisName, "axis", "x", "centre-of-mass axis: x, y or z")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "centre-of-mass phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&axisName, "axis", "x", "centre-of-mass axis: x, y or z")

	return []*cobra.Command{listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, phaseCmd}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = "run"
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, registry)
	if err := exp.Setup(registry.DefaultMetrics()); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d molecules, %d steps...\n", name, cfg.Particles, cfg.Steps)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		log.Printf("interrupted after %d steps, saving partial run", result.StepsTaken)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("collisions: %d\n", result.TotalCollisions())
	fmt.Println("\nmetrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tN\tSTEPS\tDT\tCOLLISIONS\tTILT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.StepsTaken, run.Steps,
			run.Dt,
			run.Collisions,
			run.Tilt.Mode,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	diag, err := st.LoadDiagnostics(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(diag) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("steps: %d  frames: %d\n\n", len(diag), len(frames))

	collisions := make([]float64, len(diag))
	for i, d := range diag {
		collisions[i] = float64(d.Diagnostics.Collisions)
	}
	plot(collisions, "collisions per step")

	if len(frames) > 1 {
		energy := make([]float64, len(frames))
		for i, f := range frames {
			energy[i] = metrics.Kinetic(f.Particles)
		}
		plot(energy, "kinetic energy per molecule (frames)")

		_, height := analysis.CenterSeries(frames, 2)
		plot(height, "mean height (frames)")
	}
	return nil
}

func plot(data []float64, caption string) {
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Println()
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output opens --out, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeOut(fn func(w io.Writer) error) error {
	w, err := output()
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return writeOut(func(w io.Writer) error { return st.ExportCSV(w, args[0]) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return writeOut(func(w io.Writer) error { return st.ExportJSON(w, args[0]) })
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if seriesSVG {
		diag, err := st.LoadDiagnostics(args[0])
		if err != nil {
			return err
		}
		times := make([]float64, len(diag))
		values := make([]float64, len(diag))
		for i, d := range diag {
			times[i], values[i] = d.Time, float64(d.Diagnostics.Collisions)
		}
		svg := export.SeriesToSVG(times, values, 800, 300, "#00ff88")
		if svg == "" {
			return fmt.Errorf("run %s has too few steps to plot", meta.ID)
		}
		return writeOut(func(w io.Writer) error { _, err := io.WriteString(w, svg); return err })
	}

	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", meta.ID)
	}
	idx := frameIndex
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (%d frames)", frameIndex, len(frames))
	}
	snap := frames[idx]

	frame, err := frameAt(meta.Tilt, snap.Time)
	if err != nil {
		return err
	}
	vessel := physics.Vessel{Radius: meta.Vessel.Radius, HalfHeight: meta.Vessel.HalfHeight, Margin: meta.Vessel.Margin}
	svg := export.SnapshotToSVG(snap, vessel, frame, 500)
	return writeOut(func(w io.Writer) error { _, err := io.WriteString(w, svg); return err })
}

// frameAt rebuilds the vessel orientation a stored run had at time t.
func frameAt(tilt config.TiltConfig, t float64) (physics.Frame, error) {
	fp, err := experiment.NewRegistry().GetFrameProvider(tilt)
	if err != nil {
		return nil, err
	}
	return fp.FrameAt(t), nil
}

func parseAxis(name string) (int, error) {
	switch strings.ToLower(name) {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown axis %q", name)
}

func loadFramesForAnalysis(runID string) (*storage.RunMetadata, []dynamo.Snapshot, int, error) {
	axis, err := parseAxis(axisName)
	if err != nil {
		return nil, nil, 0, err
	}
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, 0, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(frames) < 4 {
		return nil, nil, 0, fmt.Errorf("run %s has %d frames, need at least 4", meta.ID, len(frames))
	}
	return meta, frames, axis, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, axis, err := loadFramesForAnalysis(args[0])
	if err != nil {
		return err
	}

	// drop the final frame, it may sit off the sampling grid
	if frames[len(frames)-1].Step%max(1, frames[1].Step-frames[0].Step) != 0 {
		frames = frames[:len(frames)-1]
	}
	interval := frames[1].Time - frames[0].Time
	_, series := analysis.CenterSeries(frames, axis)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("centre of mass %s, %d frames every %.4fs\n\n", axisName, len(series), interval)

	ps := analysis.PowerSpectrum(series)
	plot(ps, fmt.Sprintf("power spectrum (com %s)", axisName))

	freq, _ := analysis.DominantFrequency(series, interval)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}
	if meta.Tilt.Mode == config.TiltRocking && meta.Tilt.Period > 0 {
		fmt.Printf("rocking period: %.3f s\n", meta.Tilt.Period)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, axis, err := loadFramesForAnalysis(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("phase portrait: %s (com %s vs v%s)\n\n", meta.ID, axisName, axisName)
	fmt.Print(analysis.PhasePortraitToASCII(analysis.PhasePortrait(frames, axis), 80, 24))
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
