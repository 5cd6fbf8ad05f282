package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
)

// RecoveryError is returned in place of a panic raised by a wrapped function.
type RecoveryError struct {
	PanicValue any
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// Unwrap exposes the panic value when it was an error, so panic(err) still
// matches err.
func (e *RecoveryError) Unwrap() error {
	err, _ := e.PanicValue.(error)
	return err
}

// Recover turns a panic of the wrapped function into a *RecoveryError and a
// zero output.
func Recover[In, Out any]() Middleware[In, Out] {
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (out Out, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				var zero Out
				out, err = zero, &RecoveryError{PanicValue: r, StackTrace: string(debug.Stack())}
			}()
			return next(ctx, in)
		}
	}
}
