// Package middleware provides composable middleware for stage functions.
//
// Middleware wraps a ProcessFunc with additional behavior such as panic
// recovery, per-item timeouts, retry logic, metrics collection and logging.
package middleware

import "context"

// ProcessFunc is the per-item signature shared by all stages.
// A Broker maps an input to one output; a Consumer returns struct{}.
type ProcessFunc[In, Out any] func(context.Context, In) (Out, error)

// Middleware wraps a ProcessFunc with additional behavior.
type Middleware[In, Out any] func(ProcessFunc[In, Out]) ProcessFunc[In, Out]

// Apply wraps fn with mw. For middlewares A, B, C the execution flow is
// A→B→C→fn.
func Apply[In, Out any](fn ProcessFunc[In, Out], mw ...Middleware[In, Out]) ProcessFunc[In, Out] {
	for i := len(mw) - 1; i >= 0; i-- {
		fn = mw[i](fn)
	}
	return fn
}
