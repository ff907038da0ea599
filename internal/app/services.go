package app

import (
	"fmt"
	"time"

	"rug/internal/bootstrap"
	"rug/internal/config"
	"rug/internal/neutron"
	"rug/internal/notifications"
	"rug/internal/relay"
	"rug/internal/scheduler"
	"rug/internal/worker"
	"rug/pkg/logging"
)

// Services holds every component the serve loop runs.
type Services struct {
	// Queue connects the notification listener to the relay.
	Queue *relay.Queue

	Scheduler *scheduler.Scheduler
	Worker    *worker.Worker

	// Bootstrapper pre-populates the scheduler with one POLL per router.
	Bootstrapper *bootstrap.Bootstrapper

	// Listener is nil when no Kafka brokers are configured.
	Listener *notifications.Listener

	// MetricsAddress is where /metrics and /healthz are served; empty disables it.
	MetricsAddress string

	// HealthCheckPeriod is the interval between polls of known routers; zero disables it.
	HealthCheckPeriod time.Duration

	// PollPeriods carries reloaded health check periods to the poller.
	PollPeriods chan time.Duration

	// ConfigWatcher is nil when no config directory is known.
	ConfigWatcher *config.Watcher
}

// InitializeServices builds the services from the loaded configuration.
func InitializeServices(cfg *Config) (*Services, error) {
	rc := cfg.RugConfig

	w := worker.New()
	sched := scheduler.New(scheduler.Config{NumWorkers: rc.NumWorkers}, w.HandleMessage)

	directory := neutron.NewDirectory(neutron.AuthConfig{
		AuthURL:     rc.Neutron.AuthURL,
		Username:    rc.Neutron.Username,
		Password:    rc.Neutron.Password,
		ProjectName: rc.Neutron.ProjectName,
		DomainName:  rc.Neutron.DomainName,
		Region:      rc.Neutron.Region,
	})

	services := &Services{
		Queue:     relay.NewQueue(relay.DefaultQueueCapacity),
		Scheduler: sched,
		Worker:    w,
		Bootstrapper: bootstrap.New(directory, bootstrap.Config{
			InitialBackoff: rc.Bootstrap.InitialBackoff,
			MaxBackoff:     rc.Bootstrap.MaxBackoff,
		}),
		MetricsAddress:    rc.Metrics.Address,
		HealthCheckPeriod: rc.HealthCheckPeriod,
		PollPeriods:       make(chan time.Duration, 1),
	}

	if cfg.ConfigPath != "" {
		services.ConfigWatcher = config.NewWatcher(cfg.ConfigPath, 0, services.applyReload(cfg.Debug))
	}

	if len(rc.Kafka.Brokers) > 0 {
		clientID := ""
		if rc.Host != "" {
			clientID = "rug-" + rc.Host
		}
		listener, err := notifications.NewListener(notifications.Config{
			Brokers:  rc.Kafka.Brokers,
			Topic:    rc.Kafka.Topic,
			Group:    rc.Kafka.Group,
			ClientID: clientID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create notification listener: %w", err)
		}
		services.Listener = listener
	} else {
		logging.Warn("Serve", "No Kafka brokers configured, only the bootstrap and periodic polls will feed the scheduler")
	}

	return services, nil
}

// applyReload returns the callback for config.yaml changes. Only the log
// level and the health check period take effect without a restart; --debug
// pins the level.
func (s *Services) applyReload(debug bool) func(config.RugConfig) {
	return func(rc config.RugConfig) {
		if !debug {
			if level, err := logging.ParseLevel(rc.LogLevel); err == nil {
				logging.SetLevel(level)
				logging.Info("Serve", "Log level set to %s", level)
			}
		}

		if rc.HealthCheckPeriod <= 0 || s.HealthCheckPeriod <= 0 {
			return
		}
		select {
		case <-s.PollPeriods:
		default:
		}
		s.PollPeriods <- rc.HealthCheckPeriod
	}
}
