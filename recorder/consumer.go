package recorder

import (
	"context"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/imaging"
	"github.com/fxsml/stagepipe/pipe"
)

// NewPictureRecorder creates a consumer that saves every frame from in with
// rec. The file index of a valid frame is drawn from rec's Sequencer as the
// frame leaves the queue, so recorders sharing rec and in number files in
// production order, and retries of one frame keep its index. Unnamed stages
// are named "PictureRecorder-N".
func NewPictureRecorder(in *channel.Queue[*imaging.Frame], rec *Recorder, cfg pipe.Config) *pipe.Consumer[*imaging.Frame] {
	if cfg.Name == "" {
		cfg.Name = cfg.Namer.Next("PictureRecorder")
	}
	c := pipe.NewConsumer(in, pipe.HandleFunc[*imaging.Frame](func(ctx context.Context, f *imaging.Frame) error {
		_, err := rec.Save(ctx, f)
		return err
	}), cfg)
	// A fresh consumer has not started, so Sequence cannot fail.
	_ = c.Sequence(rec.Sequencer(), func(f *imaging.Frame) bool {
		return f.Validate() == nil
	})
	return c
}
