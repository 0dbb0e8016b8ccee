package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PluginsPath string // directory of plugin units

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Unwrap lists tree paths materialized and printed by Run.
	Unwrap []string
	// PrintTree prints the node tree after loading.
	PrintTree       bool
	ContinueOnError bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PluginsPath == "" {
		return nil, errors.New("PluginsPath is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("HealthcheckPort cannot be negative")
	}
	return &cfg, nil
}
