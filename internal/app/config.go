package app

import (
	"rug/internal/config"
	"rug/pkg/logging"
)

// Config holds the application configuration
type Config struct {
	// Debug enables debug logging
	Debug bool

	// LogFormat selects text or JSON log output
	LogFormat logging.Format

	// NumWorkers overrides numWorkers from config.yaml when positive
	NumWorkers int

	// Directory holding config.yaml
	ConfigPath string

	// Loaded configuration; when set before NewApplication, loading is skipped
	RugConfig *config.RugConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, numWorkers int, configPath string) *Config {
	return &Config{
		Debug:      debug,
		LogFormat:  logging.FormatText,
		NumWorkers: numWorkers,
		ConfigPath: configPath,
	}
}
