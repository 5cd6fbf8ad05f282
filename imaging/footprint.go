package imaging

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Footprint is a 0/1 mask selecting the neighbors that take part in a median.
// The mask is anchored at (rows/2, cols/2).
type Footprint struct {
	mask *mat.Dense
}

type offset struct{ dy, dx int }

// NewFootprint returns an all-ones footprint of rows x cols.
func NewFootprint(rows, cols int) (Footprint, error) {
	if rows <= 0 || cols <= 0 {
		return Footprint{}, fmt.Errorf("%w: %dx%d", ErrEmptyFootprint, rows, cols)
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 1
	}
	return Footprint{mask: mat.NewDense(rows, cols, data)}, nil
}

// FootprintFromMask builds a footprint from a matrix of zeros and ones.
// The matrix is copied.
func FootprintFromMask(m mat.Matrix) (Footprint, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return Footprint{}, ErrEmptyFootprint
	}
	var selected int
	for i := range r {
		for j := range c {
			switch m.At(i, j) {
			case 0:
			case 1:
				selected++
			default:
				return Footprint{}, fmt.Errorf("imaging: footprint value %v at (%d,%d) is not 0 or 1", m.At(i, j), i, j)
			}
		}
	}
	if selected == 0 {
		return Footprint{}, ErrEmptyFootprint
	}
	return Footprint{mask: mat.DenseCopyOf(m)}, nil
}

// Dims returns the mask shape. A zero Footprint has no dimensions.
func (f Footprint) Dims() (rows, cols int) {
	if f.mask == nil {
		return 0, 0
	}
	return f.mask.Dims()
}

// Size returns the number of selected cells.
func (f Footprint) Size() int {
	return len(f.offsets())
}

func (f Footprint) offsets() []offset {
	r, c := f.Dims()
	var out []offset
	for i := range r {
		for j := range c {
			if f.mask.At(i, j) != 0 {
				out = append(out, offset{dy: i - r/2, dx: j - c/2})
			}
		}
	}
	return out
}
