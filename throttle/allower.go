// Package throttle paces and bounds pipeline work.
package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Allower is an interface for a rate limiter that allows a certain number of tokens to be consumed.
type Allower interface {
	// Allow blocks until n tokens are available or ctx is done.
	Allow(ctx context.Context, n int64) error
}

type rateAllower struct {
	lim *rate.Limiter
}

// NewRateAllower creates a token bucket limiter refilled with r tokens per
// second and holding at most burst tokens. The bucket starts full.
func NewRateAllower(r float64, burst int) Allower {
	return &rateAllower{lim: rate.NewLimiter(rate.Limit(r), burst)}
}

// NewIntervalAllower admits one token per interval. The first token is
// available immediately; each later one at least interval after the previous.
// A non-positive interval never waits.
func NewIntervalAllower(interval time.Duration) Allower {
	if interval <= 0 {
		return NewNoopAllower()
	}
	return &rateAllower{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

func (a *rateAllower) Allow(ctx context.Context, n int64) error {
	if n <= 0 {
		n = 1
	}
	if err := a.lim.WaitN(ctx, int(n)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("throttle: %w", ctxErr)
		}
		if _, ok := ctx.Deadline(); ok {
			// The limiter refuses waits that would outlast the deadline.
			return fmt.Errorf("throttle: %w: %v", context.DeadlineExceeded, err)
		}
		return fmt.Errorf("throttle: %w", err)
	}
	return nil
}

// noopAllower is a no-op implementation of the Allower interface.
type noopAllower struct{}

// NewNoopAllower returns a no-op Allower that does not limit any operations.
func NewNoopAllower() Allower {
	return noopAllower{}
}

func (a noopAllower) Allow(ctx context.Context, n int64) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("throttle: %w", ctx.Err())
	default:
		return nil
	}
}
