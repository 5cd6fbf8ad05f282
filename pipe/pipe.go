package pipe

import "context"

// Stage is a unit of a pipeline that runs on its own goroutine until its
// input ends.
type Stage interface {
	// Name returns the stage name used in logs and metrics.
	Name() string
	// Run blocks until the stage finishes. It returns nil after the
	// Sentinel was handled and ErrAlreadyStarted on a second call.
	Run(ctx context.Context) error
}

// Generator produces the items of a Producer. Returning more == false ends
// the stream; the value returned with it is discarded.
type Generator[T any] interface {
	Generate(ctx context.Context) (value T, more bool, err error)
}

// GenerateFunc adapts a function to the Generator interface.
type GenerateFunc[T any] func(ctx context.Context) (T, bool, error)

func (f GenerateFunc[T]) Generate(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

// Transformer maps one input item of a Broker to one output item.
type Transformer[In, Out any] interface {
	Transform(ctx context.Context, in In) (Out, error)
}

// TransformFunc adapts a function to the Transformer interface.
type TransformFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

func (f TransformFunc[In, Out]) Transform(ctx context.Context, in In) (Out, error) {
	return f(ctx, in)
}

// Handler applies the side effect of a Consumer to one item.
type Handler[T any] interface {
	Handle(ctx context.Context, in T) error
}

// HandleFunc adapts a function to the Handler interface.
type HandleFunc[T any] func(ctx context.Context, in T) error

func (f HandleFunc[T]) Handle(ctx context.Context, in T) error {
	return f(ctx, in)
}

// Run runs all stages concurrently and waits for them. Every stage is run to
// its own end; the returned error joins the errors of all failed stages.
func Run(ctx context.Context, stages ...Stage) error {
	g := NewGroup(ctx, GroupConfig{})
	g.Go(stages...)
	return g.Wait()
}
