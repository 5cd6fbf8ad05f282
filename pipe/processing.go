package pipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/pipe/middleware"
	"github.com/fxsml/stagepipe/throttle"
)

// Logger is the logging interface used by stages.
type Logger = middleware.Logger

// Config configures behavior of a stage.
type Config struct {
	// Name identifies the stage in logs and metrics.
	// Default is generated by Namer from the stage kind.
	Name string

	// Namer generates the name when Name is empty.
	// A nil Namer yields "Kind-" followed by a random suffix.
	Namer *Namer

	// Interval is the minimum delay between two generations of a Producer.
	// Default is 0 (no pacing). Ignored when Allower is set.
	Interval time.Duration

	// Allower paces a Producer before each generation.
	Allower throttle.Allower

	// Timeout bounds every receive of a Broker or Consumer.
	// If <= 0, a receive waits until an item arrives or the context ends.
	Timeout time.Duration

	// Logger receives lifecycle messages and the default error reports.
	// Default is middleware.DefaultLogger().
	Logger Logger

	// ErrorHandler is called when a single item fails. The item is dropped
	// and the stage continues. Default logs a warning via Logger.
	ErrorHandler func(in any, err error)
}

func (c Config) parse(kind string) Config {
	if c.Name == "" {
		c.Name = c.Namer.Next(kind)
	}
	if c.Logger == nil {
		c.Logger = middleware.DefaultLogger()
	}
	if c.ErrorHandler == nil {
		logger, name := c.Logger, c.Name
		c.ErrorHandler = func(in any, err error) {
			logger.Warn("[STAGEPIPE] Processing failed", "stage", name, "input", in, "error", err)
		}
	}
	if c.Allower == nil {
		c.Allower = throttle.NewIntervalAllower(c.Interval)
	}
	return c
}

// receive is the loop shared by Broker and Consumer. It takes items from in
// until it meets the Sentinel, a receive times out or ctx ends. On the
// Sentinel it puts it back for siblings and calls done. With seq set, every
// accepted item is handled under a context carrying its reserved index.
func receive[T any](
	ctx context.Context,
	in *channel.Queue[T],
	cfg Config,
	seq *sequencing[T],
	handle func(context.Context, T) error,
	done func(),
) error {
	cfg.Logger.Info("[STAGEPIPE] Stage started", "stage", cfg.Name)
	claim, reserved := seq.claim()
	for {
		item, err := in.GetFunc(ctx, cfg.Timeout, claim)
		if errors.Is(err, channel.ErrTimeout) {
			cfg.Logger.Warn("[STAGEPIPE] Stage stalled", "stage", cfg.Name, "timeout", cfg.Timeout)
			return &StallError{Stage: cfg.Name, Timeout: cfg.Timeout}
		}
		if err != nil {
			cfg.Logger.Warn("[STAGEPIPE] Stage canceled", "stage", cfg.Name, "error", err)
			return fmt.Errorf("pipe: %s: %w", cfg.Name, err)
		}
		if item.IsSentinel() {
			in.PutSentinel()
			if done != nil {
				done()
			}
			cfg.Logger.Info("[STAGEPIPE] Stage stopped", "stage", cfg.Name)
			return nil
		}
		itemCtx := ctx
		if reserved.ok {
			itemCtx = WithIndex(ctx, reserved.idx)
		}
		if err := handle(itemCtx, item.Value); err != nil {
			cfg.ErrorHandler(item.Value, err)
			continue
		}
		cfg.Logger.Debug("[STAGEPIPE] Item processed", "stage", cfg.Name)
	}
}

// chain applies mw to fn with recovery as the outermost layer, so a panic in
// fn or in any middleware surfaces as an error for the single item.
func chain[In, Out any](fn middleware.ProcessFunc[In, Out], mw []middleware.Middleware[In, Out]) middleware.ProcessFunc[In, Out] {
	all := make([]middleware.Middleware[In, Out], 0, len(mw)+1)
	all = append(all, middleware.Recover[In, Out]())
	all = append(all, mw...)
	return middleware.Apply(fn, all...)
}
