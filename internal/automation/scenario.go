package automation

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/experiment"
	"github.com/kajencik/3DMolecules/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Zero values inherit from the
// base configuration or the named preset.
type ScenarioStep struct {
	Name      string             `yaml:"name"`
	Preset    string             `yaml:"preset"`
	Particles int                `yaml:"particles"`
	Steps     int                `yaml:"steps"`
	Dt        float64            `yaml:"dt"`
	Seed      int64              `yaml:"seed"`
	Params    map[string]float64 `yaml:"params"`
	Tilt      *config.TiltConfig `yaml:"tilt"`
	SaveAs    string             `yaml:"save_as"`
}

// ScenarioResult pairs a step with the configuration it actually ran.
type ScenarioResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Configure derives the step's configuration from base without modifying it.
func (s ScenarioStep) Configure(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
		cfg = *p
	}
	if s.Particles > 0 {
		cfg.Particles = s.Particles
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Tilt != nil {
		cfg.Tilt = *s.Tilt
	}

	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := cfg.SetParam(k, s.Params[k]); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, registry *experiment.Registry) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Name
		if label == "" {
			label = step.Preset
		}
		log.Printf("scenario %s: step %d/%d %s", scenario.Name, i+1, len(scenario.Steps), label)

		cfg, err := step.Configure(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, registry)
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, ScenarioResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}
