package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/sim"
)

const (
	DefaultParticles   = 200
	DefaultSeed        = 1
	DefaultDt          = 1.0 / 60
	DefaultSteps       = 600
	DefaultSampleEvery = 10
)

// Tilt modes understood by the experiment registry.
const (
	TiltNone    = "none"
	TiltStatic  = "static"
	TiltRocking = "rocking"
)

// Config is the complete description of a run. It has no reference fields,
// so plain assignment copies it.
type Config struct {
	Particles   int           `yaml:"particles" env:"PARTICLES"`
	Seed        int64         `yaml:"seed" env:"SEED"`
	Dt          float64       `yaml:"dt" env:"DT"`
	Steps       int           `yaml:"steps" env:"STEPS"`
	SampleEvery int           `yaml:"sample_every" env:"SAMPLE_EVERY"`
	Vessel      VesselConfig  `yaml:"vessel" envPrefix:"VESSEL_"`
	Physics     PhysicsConfig `yaml:"physics" envPrefix:"PHYSICS_"`
	Spawn       SpawnConfig   `yaml:"spawn" envPrefix:"SPAWN_"`
	Tilt        TiltConfig    `yaml:"tilt" envPrefix:"TILT_"`
}

type VesselConfig struct {
	Radius     float64 `yaml:"radius" json:"radius" env:"RADIUS"`
	HalfHeight float64 `yaml:"half_height" json:"half_height" env:"HALF_HEIGHT"`
	Margin     float64 `yaml:"margin" json:"margin" env:"MARGIN"`
}

// PhysicsConfig mirrors physics.Params. A max_speed of .inf disables the
// speed clamp.
type PhysicsConfig struct {
	InteractionRadius float64 `yaml:"interaction_radius" env:"INTERACTION_RADIUS"`
	StiffnessFar      float64 `yaml:"stiffness_far" env:"STIFFNESS_FAR"`
	StiffnessNear     float64 `yaml:"stiffness_near" env:"STIFFNESS_NEAR"`
	Viscosity         float64 `yaml:"viscosity" env:"VISCOSITY"`
	Cohesion          float64 `yaml:"cohesion" env:"COHESION"`
	PreferredSpacing  float64 `yaml:"preferred_spacing" env:"PREFERRED_SPACING"`
	Damping           float64 `yaml:"damping" env:"DAMPING"`
	Gravity           float64 `yaml:"gravity" env:"GRAVITY"`
	Restitution       float64 `yaml:"restitution" env:"RESTITUTION"`
	CollisionRadius   float64 `yaml:"collision_radius" env:"COLLISION_RADIUS"`
	Separation        float64 `yaml:"separation" env:"SEPARATION"`
	MaxSpeed          float64 `yaml:"max_speed" env:"MAX_SPEED"`
	MinRotationSpeed  float64 `yaml:"min_rotation_speed" env:"MIN_ROTATION_SPEED"`
	BoundaryEpsilon   float64 `yaml:"boundary_epsilon" env:"BOUNDARY_EPSILON"`
}

type SpawnConfig struct {
	VelocityRange    float64 `yaml:"velocity_range" env:"VELOCITY_RANGE"`
	RotationSpeedMin float64 `yaml:"rotation_speed_min" env:"ROTATION_SPEED_MIN"`
	RotationSpeedMax float64 `yaml:"rotation_speed_max" env:"ROTATION_SPEED_MAX"`
}

// TiltConfig selects a frame provider. Angles are radians; Period only
// applies to rocking.
type TiltConfig struct {
	Mode   string  `yaml:"mode" json:"mode" env:"MODE"`
	AngleX float64 `yaml:"angle_x" json:"angle_x" env:"ANGLE_X"`
	AngleY float64 `yaml:"angle_y" json:"angle_y" env:"ANGLE_Y"`
	Period float64 `yaml:"period" json:"period" env:"PERIOD"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	s := physics.DefaultSpawnConfig()
	return &Config{
		Particles:   DefaultParticles,
		Seed:        DefaultSeed,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Vessel: VesselConfig{
			Radius:     p.Vessel.Radius,
			HalfHeight: p.Vessel.HalfHeight,
			Margin:     p.Vessel.Margin,
		},
		Physics: PhysicsConfig{
			InteractionRadius: p.InteractionRadius,
			StiffnessFar:      p.StiffnessFar,
			StiffnessNear:     p.StiffnessNear,
			Viscosity:         p.Viscosity,
			Cohesion:          p.Cohesion,
			PreferredSpacing:  p.PreferredSpacing,
			Damping:           p.LinearDamping,
			Gravity:           p.Gravity,
			Restitution:       p.Restitution,
			CollisionRadius:   p.CollisionRadius,
			Separation:        p.Separation,
			MaxSpeed:          p.MaxSpeed,
			MinRotationSpeed:  p.MinRotationSpeed,
			BoundaryEpsilon:   p.BoundaryEpsilon,
		},
		Spawn: SpawnConfig{
			VelocityRange:    s.VelocityRange,
			RotationSpeedMin: s.RotationSpeedMin,
			RotationSpeedMax: s.RotationSpeedMax,
		},
		Tilt: TiltConfig{Mode: TiltNone},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file on top of base. Keys absent from the file keep
// base's values; base itself is not modified.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve layers defaults, the named preset, a YAML file and MOLSIM_*
// environment variables, in that order. Empty preset or path skip their
// layer. CLI flags are applied by the caller afterwards.
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		p := GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		cfg = p
	}
	if path != "" {
		loaded, err := LoadOver(cfg, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		InteractionRadius: c.Physics.InteractionRadius,
		StiffnessFar:      c.Physics.StiffnessFar,
		StiffnessNear:     c.Physics.StiffnessNear,
		Viscosity:         c.Physics.Viscosity,
		Cohesion:          c.Physics.Cohesion,
		PreferredSpacing:  c.Physics.PreferredSpacing,
		LinearDamping:     c.Physics.Damping,
		Gravity:           c.Physics.Gravity,
		Restitution:       c.Physics.Restitution,
		CollisionRadius:   c.Physics.CollisionRadius,
		Separation:        c.Physics.Separation,
		MaxSpeed:          c.Physics.MaxSpeed,
		MinRotationSpeed:  c.Physics.MinRotationSpeed,
		BoundaryEpsilon:   c.Physics.BoundaryEpsilon,
		Vessel: physics.Vessel{
			Radius:     c.Vessel.Radius,
			HalfHeight: c.Vessel.HalfHeight,
			Margin:     c.Vessel.Margin,
		},
	}
}

// SetParam updates a tunable by its physics.Params name.
func (c *Config) SetParam(name string, v float64) error {
	p, err := c.Params().With(name, v)
	if err != nil {
		return err
	}
	c.Physics = PhysicsConfig{
		InteractionRadius: p.InteractionRadius,
		StiffnessFar:      p.StiffnessFar,
		StiffnessNear:     p.StiffnessNear,
		Viscosity:         p.Viscosity,
		Cohesion:          p.Cohesion,
		PreferredSpacing:  p.PreferredSpacing,
		Damping:           p.LinearDamping,
		Gravity:           p.Gravity,
		Restitution:       p.Restitution,
		CollisionRadius:   p.CollisionRadius,
		Separation:        p.Separation,
		MaxSpeed:          p.MaxSpeed,
		MinRotationSpeed:  p.MinRotationSpeed,
		BoundaryEpsilon:   p.BoundaryEpsilon,
	}
	return nil
}

func (c *Config) SpawnParams() physics.SpawnConfig {
	return physics.SpawnConfig{
		VelocityRange:    c.Spawn.VelocityRange,
		RotationSpeedMin: c.Spawn.RotationSpeedMin,
		RotationSpeedMax: c.Spawn.RotationSpeedMax,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}

func (c *Config) Validate() error {
	if c.Particles < 0 {
		return fmt.Errorf("%w: particles must not be negative, got %d", dynamo.ErrParameterBounds, c.Particles)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative", dynamo.ErrParameterBounds)
	}
	if c.Spawn.VelocityRange < 0 || c.Spawn.RotationSpeedMin > c.Spawn.RotationSpeedMax {
		return fmt.Errorf("%w: invalid spawn ranges", dynamo.ErrParameterBounds)
	}
	switch c.Tilt.Mode {
	case "", TiltNone, TiltStatic, TiltRocking:
	default:
		return fmt.Errorf("%w: unknown tilt mode %q", dynamo.ErrParameterBounds, c.Tilt.Mode)
	}
	return c.Params().Validate()
}
