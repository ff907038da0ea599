package relay

import (
	"context"
	"errors"
	"sync"

	"rug/internal/event"
)

// ErrQueueClosed is returned when sending to, or relaying from, a closed queue.
var ErrQueueClosed = errors.New("relay: notification queue closed")

// DefaultQueueCapacity is the buffer size used when NewQueue gets a
// non-positive capacity.
const DefaultQueueCapacity = 1024

// Notification is one (key, event) pair produced by the listener.
type Notification struct {
	Key   string
	Event event.Event
}

// Queue carries notifications from the listener to the relay. It is created
// at startup, handed to both sides and closed on shutdown. Any number of
// producers may send; the relay is the only receiver.
//
// Once Close returns no Send succeeds, so the relay's final flush sees every
// notification that was accepted.
type Queue struct {
	ch chan Notification

	// closing wakes blocked senders; closed is signalled to the relay only
	// after every in-flight Send has finished.
	closing   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	isClosed bool
}

// NewQueue creates a queue buffering up to capacity notifications.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		ch:      make(chan Notification, capacity),
		closing: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

// Send enqueues n, blocking while the buffer is full.
func (q *Queue) Send(ctx context.Context, n Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.isClosed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- n:
		return nil
	case <-q.closing:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the queue closed and waits for in-flight sends to return.
// Notifications already buffered can still be received. Close is safe to
// call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closing)

		q.mu.Lock()
		q.isClosed = true
		q.mu.Unlock()

		close(q.closed)
	})
}

// Len returns the number of buffered notifications.
func (q *Queue) Len() int {
	return len(q.ch)
}
