package pipe

import (
	"context"
	"sync"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/pipe/middleware"
)

// Consumer takes items from its input queue and applies a side effect to
// each one.
type Consumer[T any] struct {
	in  *channel.Queue[T]
	fn  middleware.ProcessFunc[T, struct{}]
	cfg Config

	mu      sync.Mutex
	mw      []middleware.Middleware[T, struct{}]
	seq     *sequencing[T]
	started bool
}

// NewConsumer creates a Consumer reading from in.
func NewConsumer[T any](in *channel.Queue[T], h Handler[T], cfg Config) *Consumer[T] {
	return &Consumer[T]{
		in: in,
		fn: func(ctx context.Context, v T) (struct{}, error) {
			return struct{}{}, h.Handle(ctx, v)
		},
		cfg: cfg.parse("Consumer"),
	}
}

// Name returns the stage name.
func (c *Consumer[T]) Name() string {
	return c.cfg.Name
}

// Use adds middleware around the handler. Returns ErrAlreadyStarted once Run
// was called.
func (c *Consumer[T]) Use(mw ...middleware.Middleware[T, struct{}]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.mw = append(c.mw, mw...)
	return nil
}

// Sequence makes the consumer reserve an index from seq for every item it
// takes from its queue and accept approves; a nil accept approves all. The
// index is reserved while the item is removed from the queue, so consumers
// sharing seq and one input queue number items in queue order. Handlers read
// it with IndexFromContext. Returns ErrAlreadyStarted once Run was called.
func (c *Consumer[T]) Sequence(seq *Sequencer, accept func(T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.seq = nil
	if seq != nil {
		c.seq = &sequencing[T]{seq: seq, accept: accept}
	}
	return nil
}

// Run handles items until the Sentinel arrives. A failed item is handed to
// the ErrorHandler.
func (c *Consumer[T]) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	fn := chain(c.fn, c.mw)
	c.mu.Unlock()

	return receive(ctx, c.in, c.cfg, c.seq, func(ctx context.Context, v T) error {
		_, err := fn(ctx, v)
		return err
	}, nil)
}
