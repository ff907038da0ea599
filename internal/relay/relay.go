// Package relay moves notifications from the listener's queue into the
// scheduler. Run is the process's main blocking loop.
package relay

import (
	"context"
	"fmt"

	"rug/internal/event"
	"rug/internal/metrics"
	"rug/pkg/logging"
)

const subsystem = "Relay"

// Scheduler is the downstream boundary of the relay.
type Scheduler interface {
	HandleMessage(key string, ev event.Event) error
	Stop()
}

// Run forwards notifications from queue to sched, one at a time and in the
// order they were dequeued, until ctx is cancelled.
//
// Cancellation is the interrupt path: Run calls sched.Stop exactly once and
// returns nil. A closed queue or a HandleMessage error is returned as-is
// without stopping the scheduler; callers treat it as fatal.
func Run(ctx context.Context, queue *Queue, sched Scheduler) error {
	logging.Info(subsystem, "Relaying notifications to the scheduler")

	for {
		if ctx.Err() != nil {
			return interrupt(sched)
		}

		select {
		case <-ctx.Done():
			return interrupt(sched)

		case n := <-queue.ch:
			if err := forward(sched, n); err != nil {
				return err
			}

		case <-queue.closed:
			// Flush what the listener queued before closing.
			for {
				select {
				case n := <-queue.ch:
					if err := forward(sched, n); err != nil {
						return err
					}
				default:
					return ErrQueueClosed
				}
			}
		}
	}
}

func forward(sched Scheduler, n Notification) error {
	if err := sched.HandleMessage(n.Key, n.Event); err != nil {
		return fmt.Errorf("failed to hand %s to scheduler: %w", n.Event, err)
	}
	metrics.RelayMessages.WithLabelValues(string(n.Event.CRUD())).Inc()
	return nil
}

func interrupt(sched Scheduler) error {
	logging.Info(subsystem, "Interrupted, stopping scheduler")
	sched.Stop()
	return nil
}
