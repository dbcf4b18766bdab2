package config

import "sort"

var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.Particles = 150
		c.Physics.Damping = 0.5
		c.Spawn.VelocityRange = 0.2
	}),
	"viscous": preset(func(c *Config) {
		c.Physics.Viscosity = 2.0
		c.Physics.Cohesion = 1.2
		c.Physics.Damping = 0.4
		c.Physics.Restitution = 0.1
	}),
	"bouncy": preset(func(c *Config) {
		c.Particles = 120
		c.Physics.Restitution = 0.9
		c.Physics.Damping = 0.05
		c.Physics.Gravity = -4.0
		c.Physics.Viscosity = 0.1
		c.Spawn.VelocityRange = 2.0
	}),
	"tilted": preset(func(c *Config) {
		c.Tilt = TiltConfig{Mode: TiltStatic, AngleX: 0.35}
	}),
	"sloshing": preset(func(c *Config) {
		c.Steps = 1200
		c.Tilt = TiltConfig{Mode: TiltRocking, AngleX: 0.3, AngleY: 0.3, Period: 3.0}
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
