package pipe

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GroupConfig configures a Group.
type GroupConfig struct {
	// FailFast cancels the context of all stages when one stage fails.
	// Default is false: every stage runs to its own end.
	FailFast bool
}

// Group runs stages concurrently and collects their errors.
type Group struct {
	g   *errgroup.Group
	ctx context.Context

	mu   sync.Mutex
	errs []error
}

// NewGroup creates a Group whose stages run with ctx.
func NewGroup(ctx context.Context, cfg GroupConfig) *Group {
	g := &Group{g: new(errgroup.Group), ctx: ctx}
	if cfg.FailFast {
		g.g, g.ctx = errgroup.WithContext(ctx)
	}
	return g
}

// Go starts each stage on its own goroutine.
func (g *Group) Go(stages ...Stage) {
	for _, s := range stages {
		g.g.Go(func() error {
			err := s.Run(g.ctx)
			if err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, err)
				g.mu.Unlock()
			}
			return err
		})
	}
}

// Wait blocks until all stages have returned and joins their errors.
func (g *Group) Wait() error {
	_ = g.g.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
