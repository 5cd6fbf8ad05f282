package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrame is returned for frames whose shape and samples disagree.
	ErrInvalidFrame = errors.New("imaging: invalid frame")

	// ErrInvalidShape is returned for non-positive target dimensions.
	ErrInvalidShape = errors.New("imaging: invalid shape")

	// ErrEmptyFootprint is returned for footprints that select no cell.
	ErrEmptyFootprint = errors.New("imaging: empty footprint")
)

// Frame is a picture of Height x Width pixels with Channels samples each.
// Samples are stored row-major with interleaved channels and lie in [0, 1].
type Frame struct {
	Height   int
	Width    int
	Channels int
	Pix      []float64

	// Seq is the generation index assigned by the source, if any.
	Seq uint64
}

// NewFrame allocates a zeroed frame. Channels must be 1, 3 or 4.
func NewFrame(height, width, channels int) (*Frame, error) {
	f := &Frame{Height: height, Width: width, Channels: channels}
	if err := f.checkShape(); err != nil {
		return nil, err
	}
	f.Pix = make([]float64, height*width*channels)
	return f, nil
}

func (f *Frame) checkShape() error {
	if f.Height <= 0 || f.Width <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, f.Height, f.Width)
	}
	switch f.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: %d channels", ErrInvalidFrame, f.Channels)
	}
	return nil
}

// Validate reports whether the frame shape is supported and matches Pix.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil", ErrInvalidFrame)
	}
	if err := f.checkShape(); err != nil {
		return err
	}
	if want := f.Height * f.Width * f.Channels; len(f.Pix) != want {
		return fmt.Errorf("%w: %d samples for %dx%dx%d", ErrInvalidFrame, len(f.Pix), f.Height, f.Width, f.Channels)
	}
	return nil
}

func (f *Frame) offset(y, x, c int) int {
	return (y*f.Width+x)*f.Channels + c
}

// At returns the sample at row y, column x and channel c.
func (f *Frame) At(y, x, c int) float64 {
	return f.Pix[f.offset(y, x, c)]
}

// Set stores v at row y, column x and channel c.
func (f *Frame) Set(y, x, c int, v float64) {
	f.Pix[f.offset(y, x, c)] = v
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Pix = append([]float64(nil), f.Pix...)
	return &c
}

// String summarizes the frame without its samples.
func (f *Frame) String() string {
	if f == nil {
		return "Frame(nil)"
	}
	return fmt.Sprintf("Frame(seq=%d %dx%dx%d)", f.Seq, f.Height, f.Width, f.Channels)
}
