package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Outcome classifies how one item left a stage.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	// OutcomeCancel marks items abandoned because their context ended.
	OutcomeCancel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancel:
		return "cancel"
	}
	return "unknown"
}

// Metrics describes the processing of one item.
type Metrics struct {
	Start    time.Time
	Duration time.Duration
	Input    int
	Output   int
	// InFlight counts the items inside the middleware when this one entered,
	// itself included.
	InFlight int

	// RetryState is set when the item ran under Retry.
	RetryState *RetryState

	Error error
}

// Outcome classifies m.Error.
func (m *Metrics) Outcome() Outcome {
	switch {
	case m.Error == nil:
		return OutcomeSuccess
	case errors.Is(m.Error, context.Canceled), errors.Is(m.Error, context.DeadlineExceeded):
		return OutcomeCancel
	}
	return OutcomeFailure
}

// Success is 1 when the item succeeded.
func (m *Metrics) Success() int { return indicator(m.Outcome() == OutcomeSuccess) }

// Failure is 1 when the item failed for a reason other than cancellation.
func (m *Metrics) Failure() int { return indicator(m.Outcome() == OutcomeFailure) }

// Cancel is 1 when the item ended with a context error.
func (m *Metrics) Cancel() int { return indicator(m.Outcome() == OutcomeCancel) }

// Retry is 1 when Retry gave up on the item.
func (m *Metrics) Retry() int { return indicator(errors.Is(m.Error, ErrRetry)) }

func indicator(b bool) int {
	if b {
		return 1
	}
	return 0
}

// MetricsCollector receives the Metrics of every processed item.
type MetricsCollector func(metrics *Metrics)

// MetricsMiddleware measures every call of the wrapped function and hands
// the result to collect once the call returns.
func MetricsMiddleware[In, Out any](collect MetricsCollector) Middleware[In, Out] {
	var inFlight atomic.Int32
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			start := time.Now()
			n := inFlight.Add(1)
			out, err := next(ctx, in)
			inFlight.Add(-1)

			state := RetryStateFromContext(ctx)
			if state == nil {
				state = RetryStateFromError(err)
			}
			collect(&Metrics{
				Start:      start,
				Duration:   time.Since(start),
				Input:      1,
				Output:     indicator(err == nil),
				InFlight:   int(n),
				RetryState: state,
				Error:      err,
			})
			return out, err
		}
	}
}

// DistributeMetrics fans every Metrics out to all collectors in order.
func DistributeMetrics(collectors ...MetricsCollector) MetricsCollector {
	return func(m *Metrics) {
		for _, collect := range collectors {
			collect(m)
		}
	}
}
