package app

import (
	"context"
	"errors"
	"time"

	"rug/internal/bootstrap"
	"rug/internal/event"
	"rug/internal/metrics"
	"rug/internal/scheduler"
	"rug/internal/worker"
	"rug/pkg/logging"
)

// pollKnownRouters submits a POLL for every live router the worker has seen,
// once per period, until ctx is cancelled or the scheduler stops. A value on
// periods replaces the period from the next tick on.
func pollKnownRouters(ctx context.Context, period time.Duration, periods <-chan time.Duration, w *worker.Worker, sched bootstrap.Submitter) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-periods:
			if p > 0 && p != period {
				period = p
				ticker.Reset(period)
				logging.Info("HealthCheck", "Health check period is now %s", period)
			}
			continue
		case <-ticker.C:
		}

		polled := 0
		for _, state := range w.Snapshot() {
			if state.Deleted || state.RouterID == "" {
				continue
			}
			ev, err := event.NewPoll(state.TenantID, state.RouterID)
			if err != nil {
				continue
			}
			if err := sched.HandleMessage(state.TenantID, ev); err != nil {
				if errors.Is(err, scheduler.ErrStopped) {
					return nil
				}
				return err
			}
			polled++
		}
		logging.Debug("HealthCheck", "Polled %d routers", polled)
	}
}

func healthFunc(handle *bootstrap.Handle, services *Services) metrics.HealthFunc {
	return func() metrics.Health {
		outcome := handle.Outcome()

		status := "ok"
		if outcome == bootstrap.OutcomeAuthFailed || outcome == bootstrap.OutcomeFailed {
			status = "degraded"
		}

		events := make(map[string]int)
		for crud, n := range services.Worker.Counts() {
			events[string(crud)] = n
		}

		return metrics.Health{
			Status:    status,
			Bootstrap: string(outcome),
			Routers:   len(services.Worker.Snapshot()),
			QueueLen:  services.Queue.Len(),
			Scheduled: services.Scheduler.Len(),
			Events:    events,
		}
	}
}
