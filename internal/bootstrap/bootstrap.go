// Package bootstrap seeds the scheduler with a POLL event for every router
// that already exists when the process starts.
//
// The work runs in a background goroutine so that a slow or unreachable
// network service never delays the relay. Transient listing failures are
// retried with capped exponential backoff and no retry ceiling; an
// authorization failure ends the bootstrap without events, leaving the rest
// of the process running.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"rug/internal/event"
	"rug/internal/metrics"
	"rug/internal/neutron"
	"rug/pkg/logging"
)

const subsystem = "Bootstrap"

const (
	// DefaultInitialBackoff is the first sleep after a transient failure.
	DefaultInitialBackoff = time.Second

	// DefaultMaxBackoff caps the sleep between listing attempts.
	DefaultMaxBackoff = 15 * time.Second
)

// RouterLister lists the router resources known to the network service.
type RouterLister interface {
	ListRouters(ctx context.Context) ([]neutron.Router, error)
}

// Submitter accepts events for a partition key.
type Submitter interface {
	HandleMessage(key string, ev event.Event) error
}

// Config holds the backoff bounds for the listing retry loop.
type Config struct {
	// InitialBackoff defaults to 1 second.
	InitialBackoff time.Duration

	// MaxBackoff defaults to 15 seconds.
	MaxBackoff time.Duration
}

// Outcome describes how a bootstrap run ended.
type Outcome string

const (
	OutcomeRunning    Outcome = "running"
	OutcomeCompleted  Outcome = "completed"
	OutcomeAuthFailed Outcome = "auth-failed"
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeFailed     Outcome = "failed"
)

// Result summarizes a finished bootstrap run.
type Result struct {
	Outcome Outcome

	// Attempts is the number of listing calls made.
	Attempts int

	// Routers is the number of routers the successful listing returned.
	Routers int

	// Submitted is the number of POLL events handed to the scheduler.
	Submitted int
}

// Bootstrapper pre-populates the scheduler from the router directory.
type Bootstrapper struct {
	lister RouterLister
	config Config

	// onRetry observes every scheduled retry; used by tests.
	onRetry func(delay time.Duration, err error)
}

// New creates a Bootstrapper, applying defaults to unset config values.
func New(lister RouterLister, config Config) *Bootstrapper {
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}

	return &Bootstrapper{
		lister: lister,
		config: config,
	}
}

// Handle is the join point of a background bootstrap run.
type Handle struct {
	done   chan struct{}
	cancel context.CancelFunc
	result Result
	err    error
}

// Done is closed once the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its result. The error is
// non-nil only when submitting to the scheduler failed.
func (h *Handle) Wait() (Result, error) {
	<-h.done
	return h.result, h.err
}

// Outcome reports the outcome so far without blocking.
func (h *Handle) Outcome() Outcome {
	select {
	case <-h.done:
		return h.result.Outcome
	default:
		return OutcomeRunning
	}
}

// Cancel stops a run that is still retrying. It does not wait; use Wait.
func (h *Handle) Cancel() {
	h.cancel()
}

// Start launches the bootstrap in its own goroutine and returns immediately.
func (b *Bootstrapper) Start(ctx context.Context, sched Submitter) *Handle {
	ctx, cancel := context.WithCancel(ctx)

	h := &Handle{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	metrics.BootstrapState.Set(metrics.BootstrapRunning)

	go func() {
		defer close(h.done)
		defer cancel()

		h.result, h.err = b.run(ctx, sched)
		metrics.BootstrapState.Set(stateValue(h.result.Outcome))
	}()

	return h
}

// run lists routers until it succeeds, hits an authorization failure or ctx
// is cancelled, then submits one POLL event per router in listing order.
func (b *Bootstrapper) run(ctx context.Context, sched Submitter) (Result, error) {
	result := Result{Outcome: OutcomeRunning}

	policy := newListingPolicy(b.config.InitialBackoff, b.config.MaxBackoff, b.onRetry)

	routers, err := failsafe.With(policy).WithContext(ctx).Get(func() ([]neutron.Router, error) {
		result.Attempts++
		metrics.BootstrapAttempts.Inc()
		return b.lister.ListRouters(ctx)
	})
	if err != nil {
		switch {
		case neutron.IsAuthError(err):
			logging.Warn(subsystem, "PrePopulateWorkers failed, not retrying: %v", err)
			result.Outcome = OutcomeAuthFailed
			return result, nil
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
			logging.Info(subsystem, "Bootstrap cancelled after %d attempts", result.Attempts)
			result.Outcome = OutcomeCancelled
			return result, nil
		default:
			// Only reachable if the policy gains a retry limit.
			result.Outcome = OutcomeFailed
			return result, fmt.Errorf("failed to list routers: %w", err)
		}
	}

	result.Routers = len(routers)
	logging.Debug(subsystem, "Start pre-populating the workers with %d fetched routers", len(routers))

	for _, router := range routers {
		ev, err := event.NewPoll(router.TenantID, router.ID)
		if err != nil {
			logging.Warn(subsystem, "Skipping router %s: %v", router.ID, err)
			continue
		}

		if err := sched.HandleMessage(router.TenantID, ev); err != nil {
			result.Outcome = OutcomeFailed
			logging.Error(subsystem, err, "Failed to submit POLL event for router %s", router.ID)
			return result, fmt.Errorf("failed to submit router %s: %w", router.ID, err)
		}

		result.Submitted++
		metrics.BootstrapEvents.Inc()
	}

	result.Outcome = OutcomeCompleted
	logging.Info(subsystem, "Submitted %d POLL events", result.Submitted)
	return result, nil
}

func stateValue(o Outcome) float64 {
	switch o {
	case OutcomeCompleted:
		return metrics.BootstrapDone
	case OutcomeAuthFailed:
		return metrics.BootstrapAuthFailed
	case OutcomeCancelled:
		return metrics.BootstrapCancelled
	case OutcomeFailed:
		return metrics.BootstrapFailed
	default:
		return metrics.BootstrapRunning
	}
}
