package imaging

import (
	"fmt"
	"math"
)

// Resize returns src scaled to height x width using bilinear interpolation
// over pixel centers. Samples outside the source are clamped to the edge.
// When the shape is unchanged a copy of src is returned.
func Resize(src *Frame, height, width int) (*Frame, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, height, width)
	}
	if height == src.Height && width == src.Width {
		return src.Clone(), nil
	}

	dst, err := NewFrame(height, width, src.Channels)
	if err != nil {
		return nil, err
	}
	dst.Seq = src.Seq

	sy := float64(src.Height) / float64(height)
	sx := float64(src.Width) / float64(width)
	for y := range height {
		fy := clampf((float64(y)+0.5)*sy-0.5, 0, float64(src.Height-1))
		y0 := int(math.Floor(fy))
		y1 := min(y0+1, src.Height-1)
		wy := fy - float64(y0)
		for x := range width {
			fx := clampf((float64(x)+0.5)*sx-0.5, 0, float64(src.Width-1))
			x0 := int(math.Floor(fx))
			x1 := min(x0+1, src.Width-1)
			wx := fx - float64(x0)
			for c := range src.Channels {
				top := src.At(y0, x0, c)*(1-wx) + src.At(y0, x1, c)*wx
				bottom := src.At(y1, x0, c)*(1-wx) + src.At(y1, x1, c)*wx
				dst.Set(y, x, c, top*(1-wy)+bottom*wy)
			}
		}
	}
	return dst, nil
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
