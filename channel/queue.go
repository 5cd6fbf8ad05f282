package channel

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by [Queue.Get] when no item arrived within the timeout.
var ErrTimeout = errors.New("channel: receive timeout")

// Queue is an unbounded FIFO queue of items.
// The zero value is not usable; create queues with [New].
type Queue[T any] struct {
	mu      sync.Mutex
	items   []Item[T]
	writers int

	// notify holds at most one wake-up token for blocked readers.
	notify chan struct{}
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
	}
}

// Put appends v as a payload. Put never blocks.
func (q *Queue[T]) Put(v T) {
	q.push(Payload(v))
}

// PutSentinel appends a Sentinel regardless of attached writers.
// Stages use it to hand a Sentinel they consumed back to sibling readers.
func (q *Queue[T]) PutSentinel() {
	q.push(Sentinel[T]())
}

func (q *Queue[T]) push(it Item[T]) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
	q.wake()
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryGet removes and returns the head item without blocking.
// It returns false if the queue is empty.
func (q *Queue[T]) TryGet() (Item[T], bool) {
	return q.tryGet(nil)
}

func (q *Queue[T]) tryGet(claim func(Item[T])) (Item[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.pop()
	if ok && claim != nil {
		claim(it)
	}
	return it, ok
}

// pop must be called with mu held.
func (q *Queue[T]) pop() (Item[T], bool) {
	if len(q.items) == 0 {
		return Item[T]{}, false
	}
	it := q.items[0]
	q.items[0] = Item[T]{}
	q.items = q.items[1:]
	if len(q.items) > 0 {
		// Another reader may be parked on the token we consumed.
		q.wake()
	}
	return it, true
}

// Get removes and returns the head item, blocking until one is available.
// It returns ErrTimeout if nothing arrived within timeout and the context
// error if ctx is done first. A timeout <= 0 waits indefinitely.
func (q *Queue[T]) Get(ctx context.Context, timeout time.Duration) (Item[T], error) {
	return q.GetFunc(ctx, timeout, nil)
}

// GetFunc is Get with a claim hook. claim runs on the removed item before the
// queue is unlocked, so whatever readers record in claim follows queue order.
// claim must not call back into q.
func (q *Queue[T]) GetFunc(ctx context.Context, timeout time.Duration, claim func(Item[T])) (Item[T], error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		if it, ok := q.tryGet(claim); ok {
			return it, nil
		}
		select {
		case <-q.notify:
		case <-expired:
			// An item may have landed together with the deadline.
			if it, ok := q.tryGet(claim); ok {
				return it, nil
			}
			return Item[T]{}, ErrTimeout
		case <-ctx.Done():
			return Item[T]{}, ctx.Err()
		}
	}
}

// Len returns the number of queued items, Sentinels included.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue currently holds no items.
// The answer may be stale by the time the caller acts on it.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Attach registers a writer responsible for terminating the queue.
func (q *Queue[T]) Attach() {
	q.mu.Lock()
	q.writers++
	q.mu.Unlock()
}

// Detach unregisters a writer. When no attached writers remain, a single
// Sentinel is appended and Detach returns true.
//
// Detach without a matching Attach acts as the final detach of a lone writer.
// Attaching again after the final detach starts a new round that ends with
// its own Sentinel.
func (q *Queue[T]) Detach() bool {
	q.mu.Lock()
	q.writers--
	if q.writers > 0 {
		q.mu.Unlock()
		return false
	}
	q.writers = 0
	q.items = append(q.items, Sentinel[T]())
	q.mu.Unlock()
	q.wake()
	return true
}

// Writers returns the number of currently attached writers.
func (q *Queue[T]) Writers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writers
}
