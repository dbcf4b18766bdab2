package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
)

type ExportData struct {
	Run         RunMetadata   `json:"run"`
	Diagnostics []ExportStep  `json:"diagnostics"`
	Frames      []ExportFrame `json:"frames"`
}

type ExportStep struct {
	Step       int     `json:"step"`
	Time       float64 `json:"time"`
	PairChecks int     `json:"pair_checks"`
	Collisions int     `json:"collisions"`
}

type ExportFrame struct {
	Step      int              `json:"step"`
	Time      float64          `json:"time"`
	Particles []ExportParticle `json:"particles"`
}

type ExportParticle struct {
	Position      mgl64.Vec3 `json:"position"`
	Velocity      mgl64.Vec3 `json:"velocity"`
	RotationAxis  mgl64.Vec3 `json:"rotation_axis"`
	RotationSpeed float64    `json:"rotation_speed"`
	RotationAngle float64    `json:"rotation_angle"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	steps, err := s.LoadDiagnostics(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:         *meta,
		Diagnostics: make([]ExportStep, len(steps)),
		Frames:      make([]ExportFrame, len(frames)),
	}
	for i, st := range steps {
		data.Diagnostics[i] = ExportStep{
			Step:       st.Step,
			Time:       st.Time,
			PairChecks: st.Diagnostics.PairChecks,
			Collisions: st.Diagnostics.Collisions,
		}
	}
	for i, f := range frames {
		ef := ExportFrame{Step: f.Step, Time: f.Time, Particles: make([]ExportParticle, len(f.Particles))}
		for j, p := range f.Particles {
			ef.Particles[j] = ExportParticle{
				Position:      p.Position,
				Velocity:      p.Velocity,
				RotationAxis:  p.RotationAxis,
				RotationSpeed: p.RotationSpeed,
				RotationAngle: p.RotationAngle,
			}
		}
		data.Frames[i] = ef
	}
	return data, nil
}

// ExportJSON writes the run as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies the run's frames table to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
