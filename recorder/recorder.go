// Package recorder persists frames as sequentially numbered picture files.
//
// Several picture recorder stages may share one [Recorder]; file indices are
// then drawn from its single [pipe.Sequencer], so files are numbered without
// gaps or duplicates no matter which stage saves them.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fxsml/stagepipe/imaging"
	"github.com/fxsml/stagepipe/pipe"
	"github.com/fxsml/stagepipe/throttle"
)

// ErrUnsupportedFormat is returned for file extensions with no encoder.
var ErrUnsupportedFormat = errors.New("recorder: unsupported format")

// Config configures a Recorder.
type Config struct {
	// Folder receives the files. It is created if missing.
	Folder string

	// Stem is the file name prefix. Default is "output".
	Stem string

	// Ext selects the encoder: "png" (default), "jpg" or "jpeg".
	Ext string

	// JPEGQuality is the encoder quality from 1 to 100. Default is 90.
	JPEGQuality int

	// Sequencer provides file indices. Default is a new Sequencer at 0.
	Sequencer *pipe.Sequencer

	// MaxConcurrentWrites bounds concurrent encodes. If <= 0, unbounded.
	MaxConcurrentWrites int64
}

func (c Config) parse() (Config, error) {
	if c.Stem == "" {
		c.Stem = "output"
	}
	c.Ext = strings.ToLower(strings.TrimPrefix(c.Ext, "."))
	switch c.Ext {
	case "":
		c.Ext = "png"
	case "png", "jpg", "jpeg":
	default:
		return c, fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.Ext)
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 90
	}
	if c.Sequencer == nil {
		c.Sequencer = pipe.NewSequencer()
	}
	return c, nil
}

// Recorder saves frames to Folder/Stem_N.Ext with N drawn from its Sequencer.
// It is safe for concurrent use.
type Recorder struct {
	cfg Config
	sem *throttle.Semaphore

	saved  atomic.Uint64
	failed atomic.Uint64
}

// New creates the target folder and returns a Recorder writing into it.
func New(cfg Config) (*Recorder, error) {
	cfg, err := cfg.parse()
	if err != nil {
		return nil, err
	}
	if cfg.Folder != "" {
		if err := os.MkdirAll(cfg.Folder, 0o755); err != nil {
			return nil, fmt.Errorf("recorder: create folder: %w", err)
		}
	}
	r := &Recorder{cfg: cfg}
	if cfg.MaxConcurrentWrites > 0 {
		r.sem = throttle.NewSemaphore(cfg.MaxConcurrentWrites)
	}
	return r, nil
}

// Sequencer returns the sequencer the recorder draws indices from.
func (r *Recorder) Sequencer() *pipe.Sequencer {
	return r.cfg.Sequencer
}

// Path returns the file path for index idx.
func (r *Recorder) Path(idx uint64) string {
	return filepath.Join(r.cfg.Folder, fmt.Sprintf("%s_%d.%s", r.cfg.Stem, idx, r.cfg.Ext))
}

// Save writes frame under its index and returns the path. The index is the
// one a sequenced PictureRecorder reserved for the frame (see
// pipe.IndexFromContext), so retried saves reuse it; otherwise Save reserves
// the next one. Invalid frames are rejected before an index is reserved.
func (r *Recorder) Save(ctx context.Context, frame *imaging.Frame) (string, error) {
	if err := frame.Validate(); err != nil {
		r.failed.Add(1)
		return "", fmt.Errorf("recorder: %w", err)
	}
	idx, ok := pipe.IndexFromContext(ctx)
	if !ok {
		idx = r.cfg.Sequencer.Next()
	}
	return r.SaveAt(ctx, idx, frame)
}

// SaveAt writes frame to Path(idx) without touching the Sequencer.
func (r *Recorder) SaveAt(ctx context.Context, idx uint64, frame *imaging.Frame) (string, error) {
	img, err := frame.Image()
	if err != nil {
		r.failed.Add(1)
		return "", fmt.Errorf("recorder: %w", err)
	}
	if err := r.sem.Acquire(ctx); err != nil {
		r.failed.Add(1)
		return "", fmt.Errorf("recorder: %w", err)
	}
	defer r.sem.Release()

	path := r.Path(idx)
	if err := r.write(path, img); err != nil {
		r.failed.Add(1)
		return path, err
	}
	r.saved.Add(1)
	return path, nil
}

func (r *Recorder) write(path string, img image.Image) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recorder: create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("recorder: close file: %w", cerr)
		}
	}()

	switch r.cfg.Ext {
	case "png":
		if err := png.Encode(file, img); err != nil {
			return fmt.Errorf("recorder: png encode: %w", err)
		}
	default:
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: r.cfg.JPEGQuality}); err != nil {
			return fmt.Errorf("recorder: jpeg encode: %w", err)
		}
	}
	return nil
}

// Stats returns the number of saved frames and of failed save attempts.
func (r *Recorder) Stats() (saved, failed uint64) {
	return r.saved.Load(), r.failed.Load()
}

// Load decodes a PNG or JPEG file back into a frame.
func Load(path string) (*imaging.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("recorder: decode %s: %w", path, err)
	}
	return imaging.FromImage(img), nil
}
