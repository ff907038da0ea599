// Package scheduler dispatches events to a pool of workers, partitioned by key.
//
// For a given key events are processed in submission order and at most one
// is in flight at a time. Different keys are processed concurrently, bounded
// by the number of workers. HandleMessage only enqueues and is safe for
// concurrent use by any number of producers.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"rug/internal/event"
	"rug/internal/metrics"
	"rug/pkg/logging"
)

const subsystem = "Scheduler"

// DefaultNumWorkers is used when Config.NumWorkers is not set.
const DefaultNumWorkers = 16

// ErrStopped is returned by HandleMessage once Stop has been called.
var ErrStopped = errors.New("scheduler: stopped")

// WorkerFunc processes one event for one key.
type WorkerFunc func(ctx context.Context, key string, ev event.Event) error

// Config holds scheduler settings.
type Config struct {
	// NumWorkers is the number of concurrent workers. Defaults to 16.
	NumWorkers int
}

// Scheduler is a keyed work queue with a fixed worker pool.
type Scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	config     Config
	workerFunc WorkerFunc

	// pending holds queued events per key in submission order
	pending map[string][]event.Event

	// ready lists keys that have pending events and nothing in flight
	ready []string

	// inFlight tracks keys currently being processed
	inFlight map[string]bool

	depth int

	ctx        context.Context
	cancelFunc context.CancelFunc

	wg       sync.WaitGroup
	started  bool
	stopping bool
	stopOnce sync.Once
}

// New creates a scheduler. Workers are not started until Start is called;
// events submitted before that are queued.
func New(config Config, workerFunc WorkerFunc) *Scheduler {
	if config.NumWorkers <= 0 {
		config.NumWorkers = DefaultNumWorkers
	}

	s := &Scheduler{
		config:     config,
		workerFunc: workerFunc,
		pending:    make(map[string][]event.Event),
		inFlight:   make(map[string]bool),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start launches the worker pool. The context passed to the worker function
// is derived from ctx and cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopping {
		return
	}
	s.started = true
	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	for i := 0; i < s.config.NumWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	logging.Info(subsystem, "Started with %d workers", s.config.NumWorkers)
}

// HandleMessage enqueues ev under key. It never blocks on event processing.
func (s *Scheduler) HandleMessage(key string, ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return ErrStopped
	}

	s.pending[key] = append(s.pending[key], ev)
	s.depth++
	metrics.SchedulerQueueDepth.Set(float64(s.depth))

	// A key becomes ready on its first pending event; while it is in flight
	// the worker re-queues it on completion.
	if !s.inFlight[key] && len(s.pending[key]) == 1 {
		s.ready = append(s.ready, key)
		s.cond.Signal()
	}

	logging.Debug(subsystem, "Queued %s for key %s", ev, key)
	return nil
}

// next blocks until a key is ready or the scheduler is stopping.
func (s *Scheduler) next() (string, event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.ready) == 0 && !s.stopping {
		s.cond.Wait()
	}
	if s.stopping {
		return "", event.Event{}, false
	}

	key := s.ready[0]
	s.ready = s.ready[1:]

	queue := s.pending[key]
	ev := queue[0]
	s.pending[key] = queue[1:]
	s.inFlight[key] = true

	s.depth--
	metrics.SchedulerQueueDepth.Set(float64(s.depth))

	return key, ev, true
}

// done releases key and makes it ready again if more events arrived.
func (s *Scheduler) done(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, key)

	if len(s.pending[key]) > 0 {
		s.ready = append(s.ready, key)
		s.cond.Signal()
		return
	}
	delete(s.pending, key)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	logging.Debug(subsystem, "Worker %d started", id)

	for {
		key, ev, ok := s.next()
		if !ok {
			logging.Debug(subsystem, "Worker %d shutting down", id)
			return
		}

		if err := s.workerFunc(s.ctx, key, ev); err != nil {
			logging.Warn(subsystem, "Worker %d failed to handle %s: %v", id, ev, err)
		}

		s.done(key)
	}
}

// Stop rejects further submissions, waits for in-flight events to finish and
// drops whatever is still queued. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopping = true
		dropped := s.depth
		cancel := s.cancelFunc
		s.cond.Broadcast()
		s.mu.Unlock()

		logging.Info(subsystem, "Stopping scheduler, dropping %d queued events", dropped)

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()

		s.mu.Lock()
		s.pending = make(map[string][]event.Event)
		s.ready = nil
		s.depth = 0
		s.mu.Unlock()
		metrics.SchedulerQueueDepth.Set(0)

		logging.Info(subsystem, "Scheduler stopped")
	})
}

// Len returns the number of queued events across all keys, excluding those
// in flight.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}
