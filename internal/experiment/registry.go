package experiment

import (
	"fmt"
	"sort"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/metrics"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/sim"
)

// DefaultStabilityThreshold is the speed above which a step counts as
// unstable for the stability metric.
const DefaultStabilityThreshold = 6.0

type Registry struct {
	tilts   map[string]func(config.TiltConfig) sim.FrameProvider
	metrics map[string]func() dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		tilts:   make(map[string]func(config.TiltConfig) sim.FrameProvider),
		metrics: make(map[string]func() dynamo.Metric),
	}

	r.tilts[config.TiltNone] = func(config.TiltConfig) sim.FrameProvider { return sim.NoTilt{} }
	r.tilts[config.TiltStatic] = func(t config.TiltConfig) sim.FrameProvider {
		return sim.StaticTilt{Frame: physics.TiltXY(t.AngleX, t.AngleY)}
	}
	r.tilts[config.TiltRocking] = func(t config.TiltConfig) sim.FrameProvider {
		return sim.Rocking{AmplitudeX: t.AngleX, AmplitudeY: t.AngleY, Period: t.Period}
	}

	r.metrics["kinetic_energy"] = func() dynamo.Metric { return metrics.NewKineticEnergy() }
	r.metrics["mean_height"] = func() dynamo.Metric { return metrics.NewMeanHeight() }
	r.metrics["collision_rate"] = func() dynamo.Metric { return metrics.NewCollisionRate() }
	r.metrics["stability"] = func() dynamo.Metric { return metrics.NewStability(DefaultStabilityThreshold) }

	return r
}

// GetFrameProvider builds the provider for a tilt configuration. An empty
// mode means no tilt.
func (r *Registry) GetFrameProvider(t config.TiltConfig) (sim.FrameProvider, error) {
	mode := t.Mode
	if mode == "" {
		mode = config.TiltNone
	}
	fn, ok := r.tilts[mode]
	if !ok {
		return nil, fmt.Errorf("unknown tilt mode: %s", t.Mode)
	}
	return fn(t), nil
}

func (r *Registry) GetMetric(name string) (dynamo.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListTiltModes() []string {
	return sortedNames(r.tilts)
}

func (r *Registry) ListMetrics() []string {
	return sortedNames(r.metrics)
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	names := r.ListMetrics()
	ms := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		ms = append(ms, r.metrics[name]())
	}
	return ms
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
