package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. MOLSIM_PHYSICS_VISCOSITY.
const EnvPrefix = "MOLSIM_"

// ParseEnv overlays MOLSIM_* environment variables onto cfg. Unset
// variables leave their fields alone.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
