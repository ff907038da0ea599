// Package worker handles events dispatched by the scheduler and keeps the
// last known reconcile state of every router it has seen.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"rug/internal/event"
	"rug/internal/metrics"
	"rug/pkg/logging"
)

const subsystem = "Worker"

// RouterState is the worker's view of one router.
type RouterState struct {
	TenantID   string
	RouterID   string
	LastCRUD   event.CRUD
	LastSeen   time.Time
	EventCount int
	Deleted    bool
}

// Worker records the effect of each event on its router. Events without a
// router ID are tenant-wide and recorded under the tenant alone.
type Worker struct {
	mu     sync.RWMutex
	states map[string]*RouterState
	counts map[event.CRUD]int
	now    func() time.Time
}

// New creates an empty Worker.
func New() *Worker {
	return &Worker{
		states: make(map[string]*RouterState),
		counts: make(map[event.CRUD]int),
		now:    time.Now,
	}
}

// HandleMessage is the scheduler's worker function.
func (w *Worker) HandleMessage(ctx context.Context, key string, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	metrics.WorkerEvents.WithLabelValues(string(ev.CRUD())).Inc()
	logging.Debug(subsystem, "Handling %s for key %s", ev, key)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.counts[ev.CRUD()]++

	id := stateKey(ev.TenantID(), ev.RouterID())
	state, ok := w.states[id]
	if !ok {
		state = &RouterState{TenantID: ev.TenantID(), RouterID: ev.RouterID()}
		w.states[id] = state
	}

	state.LastCRUD = ev.CRUD()
	state.LastSeen = w.now()
	state.EventCount++

	switch ev.CRUD() {
	case event.DELETE:
		state.Deleted = true
	case event.CREATE, event.POLL, event.REBUILD:
		state.Deleted = false
	}

	return nil
}

// Snapshot returns all router states ordered by tenant then router.
func (w *Worker) Snapshot() []RouterState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]RouterState, 0, len(w.states))
	for _, s := range w.states {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TenantID != out[j].TenantID {
			return out[i].TenantID < out[j].TenantID
		}
		return out[i].RouterID < out[j].RouterID
	})
	return out
}

// Counts returns how many events of each kind have been handled.
func (w *Worker) Counts() map[event.CRUD]int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[event.CRUD]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

func stateKey(tenantID, routerID string) string {
	return tenantID + "/" + routerID
}
