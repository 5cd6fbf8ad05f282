package imaging

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomFrame(t *testing.T, h, w, c int, seed uint64) *Frame {
	t.Helper()
	src, err := NewSource(h, w, c, 1, seed)
	require.NoError(t, err)
	f, more, err := src.Generate(context.Background())
	require.NoError(t, err)
	require.True(t, more)
	return f
}

func bruteMedian(f *Frame, y, x, c, rows, cols int) float64 {
	var vals []float64
	for i := range rows {
		for j := range cols {
			vals = append(vals, f.At(y+i-rows/2, x+j-cols/2, c))
		}
	}
	sort.Float64s(vals)
	return vals[len(vals)/2]
}

func TestMedian_InteriorPixels(t *testing.T) {
	for _, shape := range [][2]int{{3, 3}, {5, 5}, {3, 7}, {9, 1}, {4, 2}} {
		rows, cols := shape[0], shape[1]
		t.Run(fmt.Sprintf("%dx%d", rows, cols), func(t *testing.T) {
			frame := randomFrame(t, 24, 32, 3, uint64(rows*10+cols))
			fp, err := NewFootprint(rows, cols)
			require.NoError(t, err)

			got, err := ResizeMedian(frame, frame.Height, frame.Width, fp)
			require.NoError(t, err)
			require.Equal(t, frame.Height, got.Height)
			require.Equal(t, frame.Width, got.Width)
			require.Equal(t, 3, got.Channels)

			for y := rows / 2; y < frame.Height-rows/2; y++ {
				for x := cols / 2; x < frame.Width-cols/2; x++ {
					for c := range 3 {
						want := bruteMedian(frame, y, x, c, rows, cols)
						if got.At(y, x, c) != want {
							t.Fatalf("pixel (%d,%d,%d): expected %v, got %v", y, x, c, want, got.At(y, x, c))
						}
					}
				}
			}
		})
	}
}

func TestMedian_EdgeReplication(t *testing.T) {
	f := &Frame{Height: 1, Width: 3, Channels: 1, Pix: []float64{0, 0.5, 1}}
	fp, err := NewFootprint(1, 3)
	require.NoError(t, err)

	got, err := Median(f, fp)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, got.Pix)
}

func TestMedian_EvenFootprintTakesUpperMiddle(t *testing.T) {
	f := &Frame{Height: 1, Width: 2, Channels: 1, Pix: []float64{0.2, 0.8}}
	fp, err := NewFootprint(1, 2)
	require.NoError(t, err)

	got, err := Median(f, fp)
	require.NoError(t, err)
	// The window of column 0 is its own value twice, that of column 1 is [0.2 0.8].
	assert.Equal(t, []float64{0.2, 0.8}, got.Pix)

	f = &Frame{Height: 2, Width: 2, Channels: 1, Pix: []float64{0.1, 0.4, 0.3, 0.2}}
	fp, err = NewFootprint(2, 2)
	require.NoError(t, err)
	got, err = Median(f, fp)
	require.NoError(t, err)
	// Sorted window of the bottom-right pixel: 0.1 0.2 0.3 0.4.
	assert.Equal(t, 0.3, got.At(1, 1, 0))
}

func TestMedian_MaskedFootprint(t *testing.T) {
	// Plus-shaped mask: center and the four direct neighbors.
	fp, err := FootprintFromMask(mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 1, 1,
		0, 1, 0,
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, fp.Size())

	f := &Frame{Height: 3, Width: 3, Channels: 1, Pix: []float64{
		0.9, 0.1, 0.9,
		0.2, 0.3, 0.4,
		0.9, 0.5, 0.9,
	}}
	got, err := Median(f, fp)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.At(1, 1, 0), "corners are masked out")
}

func TestFootprint_Errors(t *testing.T) {
	_, err := NewFootprint(0, 3)
	assert.ErrorIs(t, err, ErrEmptyFootprint)

	_, err = FootprintFromMask(mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, ErrEmptyFootprint)

	_, err = FootprintFromMask(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Error(t, err)

	_, err = Median(&Frame{Height: 1, Width: 1, Channels: 1, Pix: []float64{1}}, Footprint{})
	assert.ErrorIs(t, err, ErrEmptyFootprint)
}
