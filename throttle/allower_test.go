package throttle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateAllower_Basic(t *testing.T) {
	bucket := NewRateAllower(2, 4) // 2 tokens/sec, capacity 4
	ctx := context.Background()

	// Should allow up to capacity immediately
	for range 4 {
		if err := bucket.Allow(ctx, 1); err != nil {
			t.Fatalf("unexpected error on initial Allow: %v", err)
		}
	}

	// Next call would have to wait ~500ms, longer than the deadline
	ctxTimeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if err := bucket.Allow(ctxTimeout, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRateAllower_ExceedsBurst(t *testing.T) {
	bucket := NewRateAllower(10, 5)
	if err := bucket.Allow(context.Background(), 6); err == nil {
		t.Error("expected error for request larger than burst")
	}
}

func TestIntervalAllower_Spacing(t *testing.T) {
	interval := 20 * time.Millisecond
	a := NewIntervalAllower(interval)
	ctx := context.Background()

	start := time.Now()
	for range 4 {
		if err := a.Allow(ctx, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// First token is immediate, three more wait one interval each.
	if elapsed := time.Since(start); elapsed < 3*interval-5*time.Millisecond {
		t.Errorf("expected at least %v, got %v", 3*interval, elapsed)
	}
}

func TestIntervalAllower_ZeroIsNoop(t *testing.T) {
	a := NewIntervalAllower(0)
	if _, ok := a.(noopAllower); !ok {
		t.Fatalf("expected noopAllower, got %T", a)
	}
}

func TestIntervalAllower_Canceled(t *testing.T) {
	a := NewIntervalAllower(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if err := a.Allow(ctx, 1); err != nil {
		t.Fatalf("first token should be free: %v", err)
	}
	cancel()
	if err := a.Allow(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNoopAllower(t *testing.T) {
	a := NewNoopAllower()
	if err := a.Allow(context.Background(), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Allow(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSemaphore_BoundsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)
	var (
		running atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(context.Background()); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer sem.Release()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()
	if p := peak.Load(); p > 2 {
		t.Errorf("expected at most 2 concurrent holders, got %d", p)
	}
}

func TestSemaphore_Nil(t *testing.T) {
	var sem *Semaphore
	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("nil semaphore should not block: %v", err)
	}
	sem.Release()
}

func TestSemaphore_TryAcquire(t *testing.T) {
	sem := NewSemaphore(1)
	if !sem.TryAcquire() {
		t.Fatal("expected a free slot")
	}
	if sem.TryAcquire() {
		t.Fatal("expected the only slot to be taken")
	}
	sem.Release()
	if !sem.TryAcquire() {
		t.Error("expected the released slot to be free again")
	}

	var none *Semaphore
	if !none.TryAcquire() {
		t.Error("nil semaphore should always admit")
	}
}
