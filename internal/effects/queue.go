package effects

import (
	"sync"

	"github.com/ptasker/gutenberg/internal/action"
)

// actionQueue is a thread-safe FIFO queue for dispatched actions.
//
// The queue is unbounded so cascading handlers can enqueue arbitrarily
// many follow-up actions without blocking the loop that drains them.
//
// Thread-safety is provided for external dispatchers (CLI, scenario
// runner, async gateway goroutines) while the coordinator's Run loop
// dequeues. The signal channel is buffered, size 1, so repeated enqueues
// coalesce into one wakeup.
type actionQueue struct {
	mu      sync.Mutex
	actions []action.Action
	closed  bool
	signal  chan struct{}
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]action.Action, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds an action to the back of the queue.
// Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a action.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.actions = append(q.actions, a)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (nil, false) if the queue is empty.
func (q *actionQueue) TryDequeue() (action.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return nil, false
	}

	a := q.actions[0]

	// Nil out the slot so the backing array does not retain the action.
	q.actions[0] = nil
	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}

	return a, true
}

// Wait returns a channel that signals when actions may be available.
// The channel closes when the queue closes, waking all waiters.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Closed reports whether Close has been called. The signal channel is
// buffered, so a stale wakeup with an empty queue does not mean closed;
// the loop checks this instead.
func (q *actionQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed and wakes blocked waiters. Actions already
// queued are still drained by the loop.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// idleTracker counts work in flight: queued actions, the action being
// processed, and gateway goroutines. Settle waits on it to know a
// dispatch cascade has fully drained.
type idleTracker struct {
	mu      sync.Mutex
	pending int
	waiters []chan struct{}
}

// Add registers one unit of pending work.
func (t *idleTracker) Add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
}

// Done retires one unit. When the count reaches zero every waiter is
// released.
func (t *idleTracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending--
	if t.pending == 0 {
		for _, ch := range t.waiters {
			close(ch)
		}
		t.waiters = nil
	}
}

// Idle returns a channel that closes once the pending count reaches zero.
// A tracker that is already idle returns a closed channel.
func (t *idleTracker) Idle() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan struct{})
	if t.pending == 0 {
		close(ch)
		return ch
	}
	t.waiters = append(t.waiters, ch)
	return ch
}
