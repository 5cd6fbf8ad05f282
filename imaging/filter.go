package imaging

import (
	"context"
	"fmt"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/pipe"
)

// ResizeMedian resizes frame to height x width and applies a median filter
// with the given footprint.
func ResizeMedian(frame *Frame, height, width int, fp Footprint) (*Frame, error) {
	resized, err := Resize(frame, height, width)
	if err != nil {
		return nil, fmt.Errorf("imaging: resize: %w", err)
	}
	filtered, err := Median(resized, fp)
	if err != nil {
		return nil, fmt.Errorf("imaging: median: %w", err)
	}
	return filtered, nil
}

// MedianTransformer is the pipe.Transformer of a median filter stage.
type MedianTransformer struct {
	Height    int
	Width     int
	Footprint Footprint
}

// Transform implements pipe.Transformer.
func (t MedianTransformer) Transform(ctx context.Context, f *Frame) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ResizeMedian(f, t.Height, t.Width, t.Footprint)
}

// NewMedianFilter creates a broker that resizes and median-filters every
// frame from in into out. Unnamed stages are named "MedianFilter-N".
func NewMedianFilter(
	in, out *channel.Queue[*Frame],
	height, width int,
	fp Footprint,
	cfg pipe.Config,
) (*pipe.Broker[*Frame, *Frame], error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, height, width)
	}
	if fp.Size() == 0 {
		return nil, ErrEmptyFootprint
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Namer.Next("MedianFilter")
	}
	t := MedianTransformer{Height: height, Width: width, Footprint: fp}
	return pipe.NewBroker(in, out, t, cfg), nil
}
