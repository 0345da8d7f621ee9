package app

import "griddle/internal/config"

// Config captures the command-line level options of a griddle process.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool

	// Silent suppresses all log output.
	Silent bool

	// ConfigPath overrides the user config directory.
	ConfigPath string

	// GriddleConfig, when set, skips configuration loading entirely.
	// Used by tests.
	GriddleConfig *config.GriddleConfig
}

// NewConfig creates the application configuration from CLI flags.
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
