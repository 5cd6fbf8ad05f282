package pipe

import (
	"context"
	"sync"

	"github.com/fxsml/stagepipe/channel"
)

// Sequencer allocates globally ordered indices to the stages sharing it.
// Pass the same *Sequencer to every stage that must draw from one sequence.
type Sequencer struct {
	mu   sync.Mutex
	next uint64
}

// NewSequencer returns a Sequencer starting at 0.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// NewSequencerAt returns a Sequencer whose first index is start.
func NewSequencerAt(start uint64) *Sequencer {
	return &Sequencer{next: start}
}

// Next reserves and returns the next index. Concurrent callers never receive
// the same index and no index is skipped.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	idx := s.next
	s.next++
	s.mu.Unlock()
	return idx
}

// Peek returns the index the next call to Next would reserve.
func (s *Sequencer) Peek() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

type indexKey struct{}

// WithIndex returns a copy of ctx carrying the index reserved for one item.
func WithIndex(ctx context.Context, idx uint64) context.Context {
	return context.WithValue(ctx, indexKey{}, idx)
}

// IndexFromContext returns the index a sequenced stage reserved for the item
// being handled, if any.
func IndexFromContext(ctx context.Context) (uint64, bool) {
	idx, ok := ctx.Value(indexKey{}).(uint64)
	return idx, ok
}

// sequencing reserves indices for items as they are taken from a queue.
type sequencing[T any] struct {
	seq    *Sequencer
	accept func(T) bool
}

// claim returns the hook passed to Queue.GetFunc and the slot it fills.
func (s *sequencing[T]) claim() (func(channel.Item[T]), *reservation) {
	r := &reservation{}
	if s == nil {
		return nil, r
	}
	return func(it channel.Item[T]) {
		r.ok = false
		if it.IsSentinel() || (s.accept != nil && !s.accept(it.Value)) {
			return
		}
		r.idx, r.ok = s.seq.Next(), true
	}, r
}

type reservation struct {
	idx uint64
	ok  bool
}
