package middleware

import (
	"context"
	"time"
)

// Timeout gives every call of the wrapped function its own deadline d.
// A non-positive d leaves the function untouched. The function has to
// observe ctx for the deadline to matter.
func Timeout[In, Out any](d time.Duration) Middleware[In, Out] {
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, in In) (Out, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, in)
		}
	}
}
