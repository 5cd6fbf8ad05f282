package imaging

import (
	"image"
	"image/color"
)

// Image converts the frame to an 8-bit image: *image.Gray for one channel,
// *image.RGBA with opaque alpha for three and *image.NRGBA for four.
// Samples are scaled by 255 and truncated.
func (f *Frame) Image() (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Channels {
	case 1:
		img := image.NewGray(rect)
		for i, v := range f.Pix {
			img.Pix[i] = toByte(v)
		}
		return img, nil
	case 3:
		img := image.NewRGBA(rect)
		for p := 0; p < f.Width*f.Height; p++ {
			img.Pix[p*4+0] = toByte(f.Pix[p*3+0])
			img.Pix[p*4+1] = toByte(f.Pix[p*3+1])
			img.Pix[p*4+2] = toByte(f.Pix[p*3+2])
			img.Pix[p*4+3] = 255
		}
		return img, nil
	default:
		img := image.NewNRGBA(rect)
		for i, v := range f.Pix {
			img.Pix[i] = toByte(v)
		}
		return img, nil
	}
}

// FromImage converts img into a frame. Gray images yield one channel,
// images with any translucent pixel yield four and all others three.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	channels := 3
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	default:
		if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
			channels = 4
		}
	}

	f := &Frame{
		Height:   b.Dy(),
		Width:    b.Dx(),
		Channels: channels,
		Pix:      make([]float64, b.Dx()*b.Dy()*channels),
	}
	for y := range f.Height {
		for x := range f.Width {
			px := img.At(b.Min.X+x, b.Min.Y+y)
			switch channels {
			case 1:
				g := color.GrayModel.Convert(px).(color.Gray)
				f.Set(y, x, 0, fromByte(g.Y))
			default:
				c := color.NRGBAModel.Convert(px).(color.NRGBA)
				f.Set(y, x, 0, fromByte(c.R))
				f.Set(y, x, 1, fromByte(c.G))
				f.Set(y, x, 2, fromByte(c.B))
				if channels == 4 {
					f.Set(y, x, 3, fromByte(c.A))
				}
			}
		}
	}
	return f
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	// The small bias keeps k/255 from truncating to k-1.
	return uint8(v*255 + 1e-6)
}

func fromByte(b uint8) float64 {
	return float64(b) / 255
}
