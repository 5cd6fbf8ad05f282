package pipe

import (
	"context"
	"fmt"
	"sync"

	"github.com/fxsml/stagepipe/channel"
)

type generated[T any] struct {
	value T
	more  bool
}

// Producer puts generated items on its output queue until the Generator
// reports the end, then emits the Sentinel.
type Producer[T any] struct {
	out *channel.Queue[T]
	gen Generator[T]
	cfg Config

	mu      sync.Mutex
	started bool
}

// NewProducer creates a Producer writing to out. The Producer registers as a
// writer of out immediately, so out is not terminated before it has run.
func NewProducer[T any](out *channel.Queue[T], gen Generator[T], cfg Config) *Producer[T] {
	out.Attach()
	return &Producer[T]{
		out: out,
		gen: gen,
		cfg: cfg.parse("Producer"),
	}
}

// Name returns the stage name.
func (p *Producer[T]) Name() string {
	return p.cfg.Name
}

// Run generates items until the Generator reports the end. A failed
// generation is handed to the ErrorHandler and skipped. If ctx ends first,
// Run returns its error without emitting the Sentinel.
func (p *Producer[T]) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	fn := chain(func(ctx context.Context, _ struct{}) (generated[T], error) {
		v, more, err := p.gen.Generate(ctx)
		return generated[T]{value: v, more: more}, err
	}, nil)
	p.mu.Unlock()

	p.cfg.Logger.Info("[STAGEPIPE] Stage started", "stage", p.cfg.Name)
	var n int
	for {
		if err := p.cfg.Allower.Allow(ctx, 1); err != nil {
			p.cfg.Logger.Warn("[STAGEPIPE] Stage canceled", "stage", p.cfg.Name, "error", err)
			return fmt.Errorf("pipe: %s: %w", p.cfg.Name, err)
		}
		res, err := fn(ctx, struct{}{})
		if err != nil {
			p.cfg.ErrorHandler(nil, err)
			continue
		}
		if !res.more {
			break
		}
		p.out.Put(res.value)
		n++
	}
	p.out.Detach()
	p.cfg.Logger.Info("[STAGEPIPE] Stage stopped", "stage", p.cfg.Name, "items", n)
	return nil
}
