package imaging

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Source generates random frames. It implements pipe.Generator.
type Source struct {
	height, width, channels int

	mu    sync.Mutex
	rng   *rand.Rand
	steps int
	seq   uint64
}

// NewSource returns a Source of height x width x channels frames that reports
// the end after steps frames. A negative steps never ends.
func NewSource(height, width, channels, steps int, seed uint64) (*Source, error) {
	if _, err := NewFrame(height, width, channels); err != nil {
		return nil, err
	}
	return &Source{
		height:   height,
		width:    width,
		channels: channels,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		steps:    steps,
	}, nil
}

// Generate returns the next frame with 8-bit samples scaled into [0, 1].
func (s *Source) Generate(ctx context.Context) (*Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.steps == 0 {
		return nil, false, nil
	}
	if s.steps > 0 {
		s.steps--
	}
	f, err := NewFrame(s.height, s.width, s.channels)
	if err != nil {
		return nil, false, err
	}
	for i := range f.Pix {
		f.Pix[i] = float64(s.rng.IntN(256)) / 255
	}
	f.Seq = s.seq
	s.seq++
	return f, true, nil
}
