package pipe

import (
	"context"
	"sync"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/pipe/middleware"
)

// Broker takes items from its input queue, transforms each one and puts the
// result on its output queue.
type Broker[In, Out any] struct {
	in  *channel.Queue[In]
	out *channel.Queue[Out]
	fn  middleware.ProcessFunc[In, Out]
	cfg Config

	mu      sync.Mutex
	mw      []middleware.Middleware[In, Out]
	started bool
}

// NewBroker creates a Broker from in to out. The Broker registers as a writer
// of out immediately, so out is not terminated before it has run.
func NewBroker[In, Out any](
	in *channel.Queue[In],
	out *channel.Queue[Out],
	t Transformer[In, Out],
	cfg Config,
) *Broker[In, Out] {
	out.Attach()
	return &Broker[In, Out]{
		in:  in,
		out: out,
		fn:  t.Transform,
		cfg: cfg.parse("Broker"),
	}
}

// Name returns the stage name.
func (b *Broker[In, Out]) Name() string {
	return b.cfg.Name
}

// Use adds middleware around the transform. Middleware runs in the order
// given. Returns ErrAlreadyStarted once Run was called.
func (b *Broker[In, Out]) Use(mw ...middleware.Middleware[In, Out]) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return ErrAlreadyStarted
	}
	b.mw = append(b.mw, mw...)
	return nil
}

// Run transforms items until the Sentinel arrives. A failed transform is
// handed to the ErrorHandler and produces no output.
func (b *Broker[In, Out]) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return ErrAlreadyStarted
	}
	b.started = true
	fn := chain(b.fn, b.mw)
	b.mu.Unlock()

	return receive(ctx, b.in, b.cfg, nil, func(ctx context.Context, v In) error {
		out, err := fn(ctx, v)
		if err != nil {
			return err
		}
		b.out.Put(out)
		return nil
	}, func() { b.out.Detach() })
}
