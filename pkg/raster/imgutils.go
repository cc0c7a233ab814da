package raster

import (
	"image"
)

// ToNRGBA converts any image.Image to *image.NRGBA (non-premultiplied RGBA).
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	if n, ok := src.(*image.NRGBA); ok {
		// return a copy to avoid modifying original
		out := image.NewNRGBA(n.Rect)
		copy(out.Pix, n.Pix)
		return out
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b_, a := src.At(x, y).RGBA()
			// r,g,b,a are 16-bit [0, 65535]; convert to 8-bit
			out.Pix[idx+0] = uint8(r >> 8)
			out.Pix[idx+1] = uint8(g >> 8)
			out.Pix[idx+2] = uint8(b_ >> 8)
			out.Pix[idx+3] = uint8(a >> 8)
			idx += 4
		}
	}
	return out
}

// CloneNRGBA returns a copy of the provided image.NRGBA
func CloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 clamps v to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampFloatToUint8 clamps v to the 8-bit channel range.
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
