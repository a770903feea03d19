package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg using its `env` tags.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithPrefix is Load with every variable name prefixed, e.g. "RESPIRA_".
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config (prefix %s): %w", prefix, err)
	}
	return nil
}

// LoadFrom parses cfg from an explicit environment map instead of the process
// environment. Used by tests and by the CLI when flags override variables.
func LoadFrom(cfg any, environ map[string]string, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ, Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
