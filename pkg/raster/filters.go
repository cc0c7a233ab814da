package raster

import (
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// BlurSharpen applies gaussian blur then an unsharp pass in a single
// operation. A non-positive blur or sharpen skips that half.
func BlurSharpen(frames []Frame, blur, sharpen float64) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		out := src
		if blur > 0 {
			out = imaging.Blur(out, blur)
		}
		if sharpen > 0 {
			out = imaging.Sharpen(out, sharpen)
		}
		if out == src {
			out = CloneNRGBA(src)
		}
		return out
	})
}

// Invert negates every color channel, leaving alpha untouched.
func Invert(frames []Frame) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		return imaging.Invert(src)
	})
}

// Binarize hard-thresholds every pixel to black or white by Rec.709 luminance.
// threshold is in the 8-bit domain [1,255]; alpha is preserved.
func Binarize(frames []Frame, threshold int) []Frame {
	th := float64(clampInt(threshold, 1, 255))
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		out := image.NewNRGBA(src.Bounds())
		for i := 0; i < len(src.Pix); i += 4 {
			lum := 0.2126*float64(src.Pix[i+0]) + 0.7152*float64(src.Pix[i+1]) + 0.0722*float64(src.Pix[i+2])
			var v uint8
			if lum >= th {
				v = 255
			}
			out.Pix[i+0] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
			out.Pix[i+3] = src.Pix[i+3]
		}
		return out
	})
}

// Pixelate downsamples every frame to (w/factor, h/factor) and scales it back
// up with nearest-neighbor sampling so the blocks stay hard. factor 1 is the
// identity.
func Pixelate(frames []Frame, factor int) []Frame {
	if factor <= 1 {
		return mapFrames(frames, CloneNRGBA)
	}
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		b := src.Bounds()
		w := b.Dx()
		h := b.Dy()
		dw := clampInt(w/factor, 1, w)
		dh := clampInt(h/factor, 1, h)
		small := image.NewNRGBA(image.Rect(0, 0, dw, dh))
		xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, b, xdraw.Src, nil)
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), xdraw.Src, nil)
		return out
	})
}
