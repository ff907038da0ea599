package app

import (
	"context"
	"errors"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"rug/internal/bootstrap"
	"rug/internal/metrics"
	"rug/internal/relay"
	"rug/internal/scheduler"
	"rug/pkg/logging"
)

// runServeMode runs every service until ctx is cancelled or one of them
// fails. It returns nil on a clean, signal-driven shutdown.
func runServeMode(ctx context.Context, services *Services) error {
	logging.Info("Serve", "--- Starting rug ---")

	// The scheduler outlives ctx: only the relay's Stop ends it.
	services.Scheduler.Start(context.WithoutCancel(ctx))
	defer services.Scheduler.Stop()
	defer services.Queue.Close()

	g, gctx := errgroup.WithContext(ctx)

	handle := services.Bootstrapper.Start(gctx, services.Scheduler)
	defer func() {
		handle.Cancel()
		logBootstrapResult(handle)
	}()

	if services.Listener != nil {
		defer services.Listener.Close()
		g.Go(func() error {
			return services.Listener.Run(gctx, services.Queue)
		})
	}

	if services.MetricsAddress != "" {
		server := metrics.NewServer(services.MetricsAddress, healthFunc(handle, services))
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if services.HealthCheckPeriod > 0 {
		g.Go(func() error {
			return pollKnownRouters(gctx, services.HealthCheckPeriod, services.PollPeriods, services.Worker, services.Scheduler)
		})
	}

	if services.ConfigWatcher != nil {
		g.Go(func() error {
			return services.ConfigWatcher.Run(gctx)
		})
	}

	g.Go(func() error {
		notifySystemd(daemon.SdNotifyReady)
		return relay.Run(gctx, services.Queue, services.Scheduler)
	})

	err := g.Wait()
	notifySystemd(daemon.SdNotifyStopping)

	if err != nil {
		logging.Error("Serve", err, "Shutting down after failure")
		return err
	}
	logging.Info("Serve", "--- Shut down ---")
	return nil
}

func logBootstrapResult(handle *bootstrap.Handle) {
	result, err := handle.Wait()
	switch {
	case err != nil && errors.Is(err, scheduler.ErrStopped):
		logging.Info("Serve", "Bootstrap interrupted by shutdown after %d events", result.Submitted)
	case err != nil:
		logging.Error("Serve", err, "Bootstrap failed after %d events", result.Submitted)
	default:
		logging.Debug("Serve", "Bootstrap finished: %s, %d attempts, %d events", result.Outcome, result.Attempts, result.Submitted)
	}
}

func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Serve", "Failed to notify systemd (%s): %v", state, err)
		return
	}
	if sent {
		logging.Debug("Serve", "Notified systemd: %s", state)
	}
}
