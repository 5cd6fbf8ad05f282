package throttle

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore bounds concurrent work with a weighted semaphore.
// A nil *Semaphore admits everything and only reports a done context.
type Semaphore struct {
	w *semaphore.Weighted
}

// NewSemaphore returns a Semaphore admitting capacity holders at once.
func NewSemaphore(capacity int64) *Semaphore {
	return &Semaphore{w: semaphore.NewWeighted(capacity)}
}

// Acquire blocks for one slot or until ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error { return s.AcquireN(ctx, 1) }

// AcquireN blocks for n slots or until ctx is done.
func (s *Semaphore) AcquireN(ctx context.Context, n int64) error {
	if s == nil {
		return ctx.Err()
	}
	return s.w.Acquire(ctx, n)
}

// TryAcquire takes one slot if it is free right now.
func (s *Semaphore) TryAcquire() bool {
	return s == nil || s.w.TryAcquire(1)
}

// Release returns one slot.
func (s *Semaphore) Release() { s.ReleaseN(1) }

// ReleaseN returns n slots.
func (s *Semaphore) ReleaseN(n int64) {
	if s != nil {
		s.w.Release(n)
	}
}
