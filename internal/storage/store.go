package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/sim"
)

const (
	metadataFile    = "metadata.json"
	diagnosticsFile = "diagnostics.csv"
	framesFile      = "frames.csv"
)

var (
	diagnosticsHeader = []string{"step", "time", "pair_checks", "collisions"}
	framesHeader      = []string{"step", "time", "id", "x", "y", "z", "vx", "vy", "vz", "ax", "ay", "az", "speed", "angle"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved run. JSON has no infinity, so unbounded
// parameters are listed in Unbounded and omitted from Params.
type RunMetadata struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Timestamp  time.Time           `json:"timestamp"`
	Seed       int64               `json:"seed"`
	Particles  int                 `json:"particles"`
	Dt         float64             `json:"dt"`
	Steps      int                 `json:"steps"`
	StepsTaken int                 `json:"steps_taken"`
	Collisions int                 `json:"collisions"`
	Vessel     config.VesselConfig `json:"vessel"`
	Tilt       config.TiltConfig   `json:"tilt"`
	Params     map[string]float64  `json:"params"`
	Unbounded  []string            `json:"unbounded,omitempty"`
	Metrics    map[string]float64  `json:"metrics"`
	Errors     []string            `json:"errors,omitempty"`
}

// Save writes result under a fresh run directory and returns its ID.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.createRunDir(fmt.Sprintf("%s_%d", name, now.Unix()))
	if err != nil {
		return "", err
	}

	params, unbounded := splitFinite(cfg.Params().GetParams())
	metrics, _ := splitFinite(result.Metrics)
	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Particles:  cfg.Particles,
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
		StepsTaken: result.StepsTaken,
		Collisions: result.TotalCollisions(),
		Vessel:     cfg.Vessel,
		Tilt:       cfg.Tilt,
		Params:     params,
		Unbounded:  unbounded,
		Metrics:    metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, diagnosticsFile), diagnosticsHeader, diagnosticRows(result.Steps)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, framesFile), framesHeader, frameRows(result.Frames)); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) createRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// AllParams returns Params with the unbounded entries restored as +Inf.
func (m *RunMetadata) AllParams() map[string]float64 {
	out := make(map[string]float64, len(m.Params)+len(m.Unbounded))
	for k, v := range m.Params {
		out[k] = v
	}
	for _, k := range m.Unbounded {
		out[k] = math.Inf(1)
	}
	return out
}

func (s *Store) LoadDiagnostics(runID string) ([]sim.StepRecord, error) {
	records, err := s.readCSV(runID, diagnosticsFile)
	if err != nil {
		return nil, err
	}

	steps := make([]sim.StepRecord, 0, len(records))
	for i, record := range records {
		if len(record) < len(diagnosticsHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", diagnosticsFile, i+2, len(diagnosticsHeader), len(record))
		}
		p := parser{line: i + 2}
		rec := sim.StepRecord{
			Step: p.int(record[0]),
			Time: p.float(record[1]),
			Diagnostics: dynamo.Diagnostics{
				PairChecks: p.int(record[2]),
				Collisions: p.int(record[3]),
			},
		}
		if p.err != nil {
			return nil, p.err
		}
		steps = append(steps, rec)
	}
	return steps, nil
}

// LoadFrames rebuilds the sampled snapshots. Rows of one snapshot are
// contiguous and ordered by particle id.
func (s *Store) LoadFrames(runID string) ([]dynamo.Snapshot, error) {
	records, err := s.readCSV(runID, framesFile)
	if err != nil {
		return nil, err
	}

	frames := make([]dynamo.Snapshot, 0)
	for i, record := range records {
		if len(record) < len(framesHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", framesFile, i+2, len(framesHeader), len(record))
		}
		p := parser{line: i + 2}
		step := p.int(record[0])
		t := p.float(record[1])
		pt := dynamo.Particle{
			Position:      p.vec(record[3:6]),
			Velocity:      p.vec(record[6:9]),
			RotationAxis:  p.vec(record[9:12]),
			RotationSpeed: p.float(record[12]),
			RotationAngle: p.float(record[13]),
		}
		if p.err != nil {
			return nil, p.err
		}

		if n := len(frames); n == 0 || frames[n-1].Step != step {
			frames = append(frames, dynamo.Snapshot{Step: step, Time: t})
		}
		last := &frames[len(frames)-1]
		last.Particles = append(last.Particles, pt)
	}
	return frames, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func diagnosticRows(steps []sim.StepRecord) [][]string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			strconv.Itoa(s.Diagnostics.PairChecks),
			strconv.Itoa(s.Diagnostics.Collisions),
		})
	}
	return rows
}

func frameRows(frames []dynamo.Snapshot) [][]string {
	rows := make([][]string, 0)
	for _, f := range frames {
		for id, p := range f.Particles {
			row := []string{strconv.Itoa(f.Step), formatFloat(f.Time), strconv.Itoa(id)}
			for _, v := range [...]mgl64.Vec3{p.Position, p.Velocity, p.RotationAxis} {
				row = append(row, formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
			}
			row = append(row, formatFloat(p.RotationSpeed), formatFloat(p.RotationAngle))
			rows = append(rows, row)
		}
	}
	return rows
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// formatFloat uses the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func splitFinite(m map[string]float64) (map[string]float64, []string) {
	finite := make(map[string]float64, len(m))
	var unbounded []string
	for k, v := range m {
		switch {
		case math.IsInf(v, 1):
			unbounded = append(unbounded, k)
		case math.IsNaN(v) || math.IsInf(v, -1):
		default:
			finite[k] = v
		}
	}
	sort.Strings(unbounded)
	return finite, unbounded
}

// parser keeps the first conversion error of a CSV row.
type parser struct {
	line int
	err  error
}

func (p *parser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("line %d: %w", p.line, err)
	}
	return v
}

func (p *parser) int(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("line %d: %w", p.line, err)
	}
	return v
}

func (p *parser) vec(fields []string) mgl64.Vec3 {
	return mgl64.Vec3{p.float(fields[0]), p.float(fields[1]), p.float(fields[2])}
}
