package imaging

import "sort"

// Median replaces every sample of src by the median of the neighborhood
// selected by fp in the same channel. Neighbors outside the frame take the
// value of the nearest edge sample. The median is the sorted window's element
// at rank n/2, which is the upper middle value when n is even.
func Median(src *Frame, fp Footprint) (*Frame, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	offsets := fp.offsets()
	if len(offsets) == 0 {
		return nil, ErrEmptyFootprint
	}

	dst := &Frame{
		Height:   src.Height,
		Width:    src.Width,
		Channels: src.Channels,
		Pix:      make([]float64, len(src.Pix)),
		Seq:      src.Seq,
	}
	window := make([]float64, len(offsets))
	for y := range src.Height {
		for x := range src.Width {
			for c := range src.Channels {
				for i, o := range offsets {
					yy := clampi(y+o.dy, 0, src.Height-1)
					xx := clampi(x+o.dx, 0, src.Width-1)
					window[i] = src.At(yy, xx, c)
				}
				sort.Float64s(window)
				dst.Set(y, x, c, window[len(window)/2])
			}
		}
	}
	return dst, nil
}

func clampi(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
