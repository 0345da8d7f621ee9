package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"griddle/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/griddle"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the user config directory. It
// panics only when the home directory cannot be determined at all.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the given directory, layering it
// over the defaults. A missing file is not an error; a malformed or
// invalid one is.
func LoadConfig(configPath string) (GriddleConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return cfg, nil
		}
		return GriddleConfig{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GriddleConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if err := cfg.Validate(); err != nil {
		return GriddleConfig{}, fmt.Errorf("invalid config in %s: %w", configFilePath, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return cfg, nil
}
