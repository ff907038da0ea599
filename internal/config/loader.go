package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rug/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/rug"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from configPath on top of the defaults.
func LoadConfig(configPath string) (RugConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return RugConfig{}, NewConfigurationError(configFilePath, "io",
			fmt.Sprintf("cannot read config file: %v", err))
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return RugConfig{}, parseError(configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func parseError(path string, err error) ConfigurationError {
	ce := NewConfigurationError(path, "parse", "malformed YAML")
	ce.Details = err.Error()

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		ce.Suggestions = []string{"check value types; durations are written like 15s or 1m"}
	}
	return ce
}
