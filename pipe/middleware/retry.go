package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

var (
	// ErrRetry is matched by every error returned when Retry gives up.
	ErrRetry = errors.New("stagepipe: retry")

	// ErrRetryMaxAttempts reports that every allowed attempt failed.
	ErrRetryMaxAttempts = fmt.Errorf("%w: attempts exhausted", ErrRetry)

	// ErrRetryTimeout reports that the overall retry deadline passed.
	ErrRetryTimeout = fmt.Errorf("%w: deadline reached", ErrRetry)

	// ErrRetryNotRetryable reports an error that ShouldRetry rejected.
	ErrRetryNotRetryable = fmt.Errorf("%w: permanent error", ErrRetry)
)

// BackoffFunc returns the pause before retry number attempt, starting at 1.
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff pauses for delay before every retry. Jitter is the
// fraction by which each pause may randomly deviate, between 0 and 1.
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	return ExponentialBackoff(delay, 1, 0, jitter)
}

// ExponentialBackoff pauses for initial * factor^(attempt-1), capped at limit
// when limit > 0, with the given jitter fraction.
func ExponentialBackoff(initial time.Duration, factor float64, limit time.Duration, jitter float64) BackoffFunc {
	jitter = math.Max(0, math.Min(1, jitter))
	return func(attempt int) time.Duration {
		d := float64(initial) * math.Pow(factor, float64(max(attempt, 1)-1))
		if limit > 0 {
			d = math.Min(d, float64(limit))
		}
		if jitter > 0 {
			d *= 1 + jitter*(2*rand.Float64()-1)
		}
		return time.Duration(d)
	}
}

// ShouldRetryFunc decides whether a failed attempt is retried.
type ShouldRetryFunc func(error) bool

// ShouldRetry retries errors matching one of errs, or every error if errs is
// empty.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	return func(err error) bool {
		return len(errs) == 0 || matchesAny(err, errs)
	}
}

// ShouldNotRetry retries every error except those matching one of errs.
// With no errs nothing is retried.
func ShouldNotRetry(errs ...error) ShouldRetryFunc {
	return func(err error) bool {
		return len(errs) > 0 && !matchesAny(err, errs)
	}
}

func matchesAny(err error, targets []error) bool {
	return slices.ContainsFunc(targets, func(t error) bool { return errors.Is(err, t) })
}

// RetryConfig configures the Retry middleware.
type RetryConfig struct {
	// ShouldRetry selects the errors that are retried.
	// Default retries all errors.
	ShouldRetry ShouldRetryFunc

	// Backoff produces the pause between attempts.
	// Default is one second with ±20% jitter.
	Backoff BackoffFunc

	// MaxAttempts bounds the attempts per item, the first one included.
	// Default is 3. A negative value never gives up on attempts alone.
	MaxAttempts int

	// Timeout bounds all attempts of one item together.
	// Default is one minute. A negative value disables the bound.
	Timeout time.Duration
}

func (c RetryConfig) parse() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = ShouldRetry()
	}
	if c.Backoff == nil {
		c.Backoff = ConstantBackoff(time.Second, 0.2)
	}
	switch {
	case c.MaxAttempts == 0:
		c.MaxAttempts = 3
	case c.MaxAttempts < 0:
		c.MaxAttempts = 0
	}
	switch {
	case c.Timeout == 0:
		c.Timeout = time.Minute
	case c.Timeout < 0:
		c.Timeout = 0
	}
	return c
}

// RetryState describes the attempts made for one item.
type RetryState struct {
	// Timeout and MaxAttempts echo the effective configuration;
	// zero means unbounded.
	Timeout     time.Duration
	MaxAttempts int

	Start    time.Time
	Attempts int
	Duration time.Duration

	// Causes holds the error of every failed attempt in order.
	Causes []error
	// Err is the reason Retry gave up.
	Err error
}

type retryStateKey struct{}

// RetryStateFromContext returns the state of the enclosing Retry, or nil.
// The state is updated in place as attempts are made.
func RetryStateFromContext(ctx context.Context) *RetryState {
	if ctx == nil {
		return nil
	}
	state, _ := ctx.Value(retryStateKey{}).(*RetryState)
	return state
}

// RetryStateFromError returns the state carried by a *RetryError, or nil.
func RetryStateFromError(err error) *RetryState {
	var rerr *RetryError
	if errors.As(err, &rerr) {
		return rerr.State
	}
	return nil
}

// RetryError is returned when Retry gives up. It matches its reason and the
// cause of every failed attempt.
type RetryError struct {
	State *RetryState
}

func (e *RetryError) Error() string {
	if len(e.State.Causes) == 0 {
		return e.State.Err.Error()
	}
	return fmt.Sprintf("%v after %d attempts: %v", e.State.Err, e.State.Attempts, e.State.Causes[len(e.State.Causes)-1])
}

func (e *RetryError) Unwrap() []error {
	return append([]error{e.State.Err}, e.State.Causes...)
}

// Retry runs the wrapped function again when it fails, pausing according to
// Backoff, until it succeeds, ShouldRetry rejects the error, MaxAttempts is
// reached or Timeout passes. The final error is a *RetryError.
func Retry[In, Out any](cfg RetryConfig) Middleware[In, Out] {
	cfg = cfg.parse()
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			state := &RetryState{
				Timeout:     cfg.Timeout,
				MaxAttempts: cfg.MaxAttempts,
				Start:       time.Now(),
			}
			var deadline <-chan time.Time
			if cfg.Timeout > 0 {
				t := time.NewTimer(cfg.Timeout)
				defer t.Stop()
				deadline = t.C
			}
			attemptCtx := context.WithValue(ctx, retryStateKey{}, state)

			for {
				state.Attempts++
				out, err := next(attemptCtx, in)
				state.Duration = time.Since(state.Start)
				if err == nil {
					return out, nil
				}
				state.Causes = append(state.Causes, err)

				var reason error
				switch {
				case !cfg.ShouldRetry(err):
					reason = ErrRetryNotRetryable
				case cfg.MaxAttempts > 0 && state.Attempts >= cfg.MaxAttempts:
					reason = ErrRetryMaxAttempts
				default:
					reason = pause(ctx, deadline, cfg.Backoff(state.Attempts))
				}
				if reason != nil {
					state.Err = reason
					state.Duration = time.Since(state.Start)
					var zero Out
					return zero, &RetryError{State: state}
				}
			}
		}
	}
}

func pause(ctx context.Context, deadline <-chan time.Time, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-deadline:
		return ErrRetryTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
