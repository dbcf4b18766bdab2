package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "molsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultParticles, cfg.Particles)
	assert.Equal(t, TiltNone, cfg.Tilt.Mode)
	assert.Equal(t, physics.DefaultParams(), cfg.Params())
	assert.Equal(t, physics.DefaultSpawnConfig(), cfg.SpawnParams())

	sc := cfg.SimConfig()
	assert.Equal(t, cfg.Steps, sc.Steps)
	assert.True(t, sc.ValidateState)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
particles: 42
physics:
  viscosity: 1.5
  max_speed: .inf
tilt:
  mode: static
  angle_x: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Particles)
	assert.Equal(t, 1.5, cfg.Physics.Viscosity)
	assert.True(t, math.IsInf(cfg.Physics.MaxSpeed, 1))
	assert.Equal(t, DefaultConfig().Physics.Cohesion, cfg.Physics.Cohesion)
	assert.Equal(t, DefaultSteps, cfg.Steps)
	assert.Equal(t, TiltStatic, cfg.Tilt.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "particles: [unclosed"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 77
	cfg.Physics.MaxSpeed = math.Inf(1)
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, loaded)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("MOLSIM_PARTICLES", "17")
	t.Setenv("MOLSIM_PHYSICS_VISCOSITY", "0.9")
	t.Setenv("MOLSIM_TILT_MODE", "rocking")
	t.Setenv("MOLSIM_VESSEL_RADIUS", "7")

	cfg := DefaultConfig()
	require.NoError(t, ParseEnv(cfg))

	assert.Equal(t, 17, cfg.Particles)
	assert.Equal(t, 0.9, cfg.Physics.Viscosity)
	assert.Equal(t, TiltRocking, cfg.Tilt.Mode)
	assert.Equal(t, 7.0, cfg.Vessel.Radius)
	assert.Equal(t, DefaultConfig().Physics.Cohesion, cfg.Physics.Cohesion)
}

func TestParseEnvRejectsGarbage(t *testing.T) {
	t.Setenv("MOLSIM_STEPS", "many")
	assert.Error(t, ParseEnv(DefaultConfig()))
}

func TestResolvePrecedence(t *testing.T) {
	path := writeFile(t, `
particles: 30
physics:
  viscosity: 1.1
`)
	t.Setenv("MOLSIM_PARTICLES", "31")

	cfg, err := Resolve("viscous", path)
	require.NoError(t, err)

	// env beats file
	assert.Equal(t, 31, cfg.Particles)
	// file beats preset
	assert.Equal(t, 1.1, cfg.Physics.Viscosity)
	// preset beats defaults
	assert.Equal(t, 1.2, cfg.Physics.Cohesion)
	// the shared preset table is untouched
	assert.Equal(t, 2.0, Presets["viscous"].Physics.Viscosity)
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := Resolve("nonexistent", "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative particles", func(c *Config) { c.Particles = -1 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"bad tilt", func(c *Config) { c.Tilt.Mode = "spinning" }},
		{"inverted spin range", func(c *Config) { c.Spawn.RotationSpeedMin = 5 }},
		{"bad physics", func(c *Config) { c.Physics.Restitution = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), dynamo.ErrParameterBounds)
		})
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SetParam("damping", 0.7))
	assert.Equal(t, 0.7, cfg.Physics.Damping)
	assert.Equal(t, 0.7, cfg.Params().LinearDamping)

	assert.ErrorIs(t, cfg.SetParam("nope", 1), dynamo.ErrUnknownParameter)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("tilted")
	require.NotNil(t, cfg)
	assert.Equal(t, TiltStatic, cfg.Tilt.Mode)

	cfg.Tilt.AngleX = 99
	assert.NotEqual(t, 99.0, Presets["tilted"].Tilt.AngleX)

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"bouncy", "calm", "sloshing", "tilted", "viscous"}, names)
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}
