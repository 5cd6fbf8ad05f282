package pipe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxsml/stagepipe/channel"
)

func TestGroup_Pipeline(t *testing.T) {
	raw := channel.New[int]()
	squared := channel.New[int]()
	namer := NewNamer()

	cfg := func() Config {
		c := quietConfig()
		c.Namer = namer
		c.Timeout = time.Second
		return c
	}

	var sum atomic.Int64
	producer := NewProducer(raw, counting(10), cfg())
	b1 := NewBroker(raw, squared, TransformFunc[int, int](func(_ context.Context, v int) (int, error) {
		return v * v, nil
	}), cfg())
	b2 := NewBroker(raw, squared, TransformFunc[int, int](func(_ context.Context, v int) (int, error) {
		return v * v, nil
	}), cfg())
	consumer := NewConsumer(squared, HandleFunc[int](func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	}), cfg())

	g := NewGroup(context.Background(), GroupConfig{})
	g.Go(producer, b1, b2, consumer)
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(285), sum.Load())
	_, sentinels := channel.ToSlice(squared)
	assert.Equal(t, 1, sentinels)
}

func TestGroup_JoinsErrors(t *testing.T) {
	stalled := NewConsumer(channel.New[int](), HandleFunc[int](func(context.Context, int) error {
		return nil
	}), Config{Name: "idle", Timeout: 10 * time.Millisecond, Logger: &recordingLogger{}})

	done := channel.New[int]()
	done.PutSentinel()
	ok := NewConsumer(done, HandleFunc[int](func(context.Context, int) error {
		return nil
	}), quietConfig())

	err := Run(context.Background(), stalled, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStalled)
}

func TestGroup_FailFast(t *testing.T) {
	stalled := NewConsumer(channel.New[int](), HandleFunc[int](func(context.Context, int) error {
		return nil
	}), Config{Name: "idle", Timeout: 10 * time.Millisecond, Logger: &recordingLogger{}})

	waiting := NewConsumer(channel.New[int](), HandleFunc[int](func(context.Context, int) error {
		return nil
	}), quietConfig())

	g := NewGroup(context.Background(), GroupConfig{FailFast: true})
	g.Go(stalled, waiting)

	errCh := make(chan error, 1)
	go func() { errCh <- g.Wait() }()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrStalled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, context.DeadlineExceeded))
	case <-time.After(time.Second):
		t.Fatal("fail fast group did not cancel the waiting stage")
	}
}
