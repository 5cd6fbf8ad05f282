package recorder

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxsml/stagepipe/channel"
	"github.com/fxsml/stagepipe/imaging"
	"github.com/fxsml/stagepipe/logging"
	"github.com/fxsml/stagepipe/pipe"
	"github.com/fxsml/stagepipe/pipe/middleware"
)

// tagFrame writes n into the first pixel so it survives an 8-bit round trip.
func tagFrame(f *imaging.Frame, n int) *imaging.Frame {
	f.Set(0, 0, 0, float64(n%256)/255)
	f.Set(0, 0, 1, float64(n/256)/255)
	return f
}

func readTag(t *testing.T, path string) int {
	t.Helper()
	f, err := Load(path)
	require.NoError(t, err)
	lo := int(math.Round(f.At(0, 0, 0) * 255))
	hi := int(math.Round(f.At(0, 0, 1) * 255))
	return hi*256 + lo
}

func TestPictureRecorder_FanOut(t *testing.T) {
	const pictures = 300

	for _, recorders := range []int{1, 2, 6} {
		t.Run(fmt.Sprintf("recorders=%d", recorders), func(t *testing.T) {
			dir := t.TempDir()
			rec, err := New(Config{Folder: dir, Stem: "pic", MaxConcurrentWrites: 4})
			require.NoError(t, err)

			in := channel.New[*imaging.Frame]()
			for i := range pictures {
				in.Put(testFrame(t, 2, 3, 3, uint64(i)))
			}
			in.PutSentinel()

			namer := pipe.NewNamer()
			stages := make([]pipe.Stage, recorders)
			for i := range stages {
				stages[i] = NewPictureRecorder(in, rec, pipe.Config{
					Namer:   namer,
					Timeout: time.Second,
					Logger:  logging.NewAdapter(nil),
				})
			}
			assert.Equal(t, "PictureRecorder-0", stages[0].Name())

			require.NoError(t, pipe.Run(context.Background(), stages...))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, pictures)
			for i := range pictures {
				_, err := os.Stat(rec.Path(uint64(i)))
				assert.NoError(t, err, "missing picture %d", i)
			}

			saved, failed := rec.Stats()
			assert.Equal(t, uint64(pictures), saved)
			assert.Zero(t, failed)
		})
	}
}

func TestPictureRecorder_ReportsFailures(t *testing.T) {
	rec, err := New(Config{Folder: t.TempDir()})
	require.NoError(t, err)

	in := channel.FromValues(
		testFrame(t, 2, 2, 1, 1),
		&imaging.Frame{Height: 1, Width: 1, Channels: 2, Pix: []float64{0, 0}},
		testFrame(t, 2, 2, 1, 2),
	)
	in.PutSentinel()

	var failures []error
	c := NewPictureRecorder(in, rec, pipe.Config{
		Name:   "recorder",
		Logger: logging.NewAdapter(nil),
		ErrorHandler: func(_ any, err error) {
			failures = append(failures, err)
		},
	})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], imaging.ErrInvalidFrame)
	assert.Equal(t, uint64(2), rec.Sequencer().Peek())
}

func TestPictureRecorder_FilesFollowProductionOrder(t *testing.T) {
	const pictures = 300

	for _, recorders := range []int{2, 6} {
		t.Run(fmt.Sprintf("recorders=%d", recorders), func(t *testing.T) {
			rec, err := New(Config{Folder: t.TempDir()})
			require.NoError(t, err)

			in := channel.New[*imaging.Frame]()
			for i := range pictures {
				in.Put(tagFrame(testFrame(t, 64, 64, 3, uint64(i)), i))
			}
			in.PutSentinel()

			namer := pipe.NewNamer()
			stages := make([]pipe.Stage, recorders)
			for i := range stages {
				stages[i] = NewPictureRecorder(in, rec, pipe.Config{
					Namer:   namer,
					Timeout: time.Second,
					Logger:  logging.NewAdapter(nil),
				})
			}
			require.NoError(t, pipe.Run(context.Background(), stages...))

			misplaced := 0
			for i := range pictures {
				if got := readTag(t, rec.Path(uint64(i))); got != i {
					misplaced++
					t.Errorf("file %d holds picture %d", i, got)
				}
			}
			assert.Zero(t, misplaced)
		})
	}
}

func TestPictureRecorder_RetryKeepsIndex(t *testing.T) {
	rec, err := New(Config{Folder: t.TempDir()})
	require.NoError(t, err)

	// A directory in place of the first file makes the first write fail.
	blocked := rec.Path(0)
	require.NoError(t, os.Mkdir(blocked, 0o755))

	in := channel.FromValues(
		tagFrame(testFrame(t, 4, 4, 3, 1), 0),
		tagFrame(testFrame(t, 4, 4, 3, 2), 1),
	)
	in.PutSentinel()

	var attempts atomic.Int32
	unblock := func(next middleware.ProcessFunc[*imaging.Frame, struct{}]) middleware.ProcessFunc[*imaging.Frame, struct{}] {
		return func(ctx context.Context, f *imaging.Frame) (struct{}, error) {
			if attempts.Add(1) == 2 {
				if err := os.Remove(blocked); err != nil {
					return struct{}{}, err
				}
			}
			return next(ctx, f)
		}
	}

	var failures []error
	c := NewPictureRecorder(in, rec, pipe.Config{
		Name:         "recorder",
		Logger:       logging.NewAdapter(nil),
		ErrorHandler: func(_ any, err error) { failures = append(failures, err) },
	})
	require.NoError(t, c.Use(
		middleware.Retry[*imaging.Frame, struct{}](middleware.RetryConfig{
			Backoff:     middleware.ConstantBackoff(time.Millisecond, 0),
			MaxAttempts: 3,
		}),
		unblock,
	))
	require.NoError(t, c.Run(context.Background()))

	require.Empty(t, failures)
	assert.Equal(t, 0, readTag(t, rec.Path(0)))
	assert.Equal(t, 1, readTag(t, rec.Path(1)))
	assert.Equal(t, uint64(2), rec.Sequencer().Peek())

	saved, failed := rec.Stats()
	assert.Equal(t, uint64(2), saved)
	assert.Equal(t, uint64(1), failed, "one failed attempt")
}
