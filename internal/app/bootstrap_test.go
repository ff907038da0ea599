package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rug/internal/bootstrap"
	"rug/internal/config"
	"rug/internal/event"
	"rug/internal/neutron"
	"rug/internal/relay"
	"rug/internal/scheduler"
	"rug/internal/worker"
	"rug/pkg/logging"
)

func testRugConfig() *config.RugConfig {
	cfg := config.GetDefaultConfig()
	cfg.Neutron.AuthURL = "http://keystone.invalid:5000/v3"
	cfg.Metrics.Address = ""
	return &cfg
}

func TestNewApplication_ValidConfig(t *testing.T) {
	cfg := NewConfig(false, 0, t.TempDir())
	cfg.RugConfig = testRugConfig()

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.NotNil(t, app.services.Scheduler)
	assert.NotNil(t, app.services.Bootstrapper)
	assert.Nil(t, app.services.Listener, "no brokers configured")
	assert.Empty(t, app.services.MetricsAddress)
	assert.Equal(t, config.DefaultHealthCheckPeriod, app.services.HealthCheckPeriod)
	assert.NotNil(t, app.services.ConfigWatcher)
}

func TestNewApplication_NumWorkersOverride(t *testing.T) {
	cfg := NewConfig(true, 3, t.TempDir())
	cfg.RugConfig = testRugConfig()

	_, err := NewApplication(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RugConfig.NumWorkers)
}

func TestNewApplication_WithKafka(t *testing.T) {
	cfg := NewConfig(false, 0, t.TempDir())
	cfg.RugConfig = testRugConfig()
	cfg.RugConfig.Kafka.Brokers = []string{"127.0.0.1:9092"}

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.services.Listener)
	app.services.Listener.Close()
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	cfg := NewConfig(false, 0, t.TempDir())
	cfg.RugConfig = testRugConfig()
	cfg.RugConfig.Neutron.AuthURL = ""

	_, err := NewApplication(cfg)
	require.Error(t, err)

	var errs config.ConfigurationErrorCollection
	assert.True(t, errors.As(err, &errs))
}

func TestNewApplication_LoadsFromPath(t *testing.T) {
	// No config.yaml in the directory: defaults apply, and the default
	// configuration lacks an auth URL.
	cfg := NewConfig(false, 0, t.TempDir())

	_, err := NewApplication(cfg)
	require.Error(t, err)
	require.NotNil(t, cfg.RugConfig)
	assert.Equal(t, config.DefaultNumWorkers, cfg.RugConfig.NumWorkers)
}

func TestInitializeServices_WarnsWithoutBrokers(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.LevelWarn, logging.FormatJSON, &buf)
	t.Cleanup(func() { logging.Init(logging.LevelError, logging.FormatText, io.Discard) })

	cfg := NewConfig(false, 0, "")
	cfg.RugConfig = testRugConfig()

	services, err := InitializeServices(cfg)
	require.NoError(t, err)
	assert.Nil(t, services.ConfigWatcher, "no config directory to watch")

	assert.Contains(t, buf.String(), `"subsystem":"Serve"`)
	assert.Contains(t, buf.String(), "No Kafka brokers configured")
	assert.NotContains(t, buf.String(), `"subsystem":"Bootstrap"`)
}

type staticLister struct {
	routers []neutron.Router
}

func (l staticLister) ListRouters(context.Context) ([]neutron.Router, error) {
	return l.routers, nil
}

func newTestServices(routers ...neutron.Router) *Services {
	w := worker.New()
	return &Services{
		Queue:        relay.NewQueue(8),
		Scheduler:    scheduler.New(scheduler.Config{NumWorkers: 2}, w.HandleMessage),
		Worker:       w,
		Bootstrapper: bootstrap.New(staticLister{routers: routers}, bootstrap.Config{InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}),
	}
}

func TestRunServeMode_BootstrapsRelaysAndShutsDown(t *testing.T) {
	logging.Init(logging.LevelError, logging.FormatText, io.Discard)

	services := newTestServices(
		neutron.Router{ID: "r1", TenantID: "1"},
		neutron.Router{ID: "r2", TenantID: "3"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- runServeMode(ctx, services) }()

	require.Eventually(t, func() bool {
		return len(services.Worker.Snapshot()) == 2
	}, 2*time.Second, 5*time.Millisecond, "bootstrap POLLs should reach the worker")

	ev, err := event.New("5", "r5", event.CREATE, nil)
	require.NoError(t, err)
	require.NoError(t, services.Queue.Send(ctx, relay.Notification{Key: "5", Event: ev}))

	require.Eventually(t, func() bool {
		for _, s := range services.Worker.Snapshot() {
			if s.TenantID == "5" && s.RouterID == "r5" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "relayed notification should reach the worker")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve loop did not shut down")
	}

	assert.ErrorIs(t, services.Scheduler.HandleMessage("1", ev), scheduler.ErrStopped)
	assert.ErrorIs(t, services.Queue.Send(context.Background(), relay.Notification{Key: "5", Event: ev}), relay.ErrQueueClosed)
}
