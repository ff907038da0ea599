package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rug/internal/config"
	"rug/pkg/logging"
)

// Application bootstraps and runs rug.
//
// Initialization happens in two phases:
//  1. NewApplication: logging, configuration, services
//  2. Run: the serve loop until a signal arrives or something fails
type Application struct {
	config   *Config
	services *Services
}

// NewApplication configures logging, loads and validates configuration and
// builds every service. Nothing is started yet.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.Init(appLogLevel, cfg.LogFormat, os.Stdout)

	if cfg.RugConfig == nil {
		rugCfg, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("App", err, "Failed to load rug configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load rug configuration from path %s: %w", cfg.ConfigPath, err)
		}
		cfg.RugConfig = &rugCfg
	}

	if cfg.NumWorkers > 0 {
		cfg.RugConfig.NumWorkers = cfg.NumWorkers
	}

	if err := cfg.RugConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !cfg.Debug {
		if level, err := logging.ParseLevel(cfg.RugConfig.LogLevel); err == nil {
			logging.SetLevel(level)
		}
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("App", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Run executes the serve loop. SIGINT and SIGTERM cancel it; Run then
// returns nil once everything has shut down.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServeMode(ctx, a.services)
}
