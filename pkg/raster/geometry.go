package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// CropPercent crops every frame to the rectangle given in percentages of the
// frame's own dimensions, rounded to the nearest pixel.
func CropPercent(frames []Frame, x, y, width, height float64) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		b := src.Bounds()
		w := b.Dx()
		h := b.Dy()
		cx := int(math.Round(float64(w) / 100 * x))
		cy := int(math.Round(float64(h) / 100 * y))
		cw := int(math.Round(float64(w) / 100 * width))
		ch := int(math.Round(float64(h) / 100 * height))
		rect := image.Rect(cx, cy, cx+cw, cy+ch).Add(b.Min)
		return imaging.Crop(src, rect.Intersect(b))
	})
}

// Resize scales every frame to exactly width x height (fit=fill) with a
// Catmull-Rom cubic kernel. When percent is true, width and height are
// percentages of each frame's own dimensions.
func Resize(frames []Frame, width, height float64, percent bool) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		w := width
		h := height
		if percent {
			b := src.Bounds()
			w = float64(b.Dx()) / 100 * width
			h = float64(b.Dy()) / 100 * height
		}
		return imaging.Resize(src, int(math.Round(w)), int(math.Round(h)), imaging.CatmullRom)
	})
}

// Rotate rotates every frame clockwise by degrees. The canvas grows to fit
// the rotated bounds and the exposed area is filled transparent.
func Rotate(frames []Frame, degrees float64) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		// imaging rotates counter-clockwise for positive angles
		return imaging.Rotate(src, -degrees, color.NRGBA{})
	})
}

// FlipX mirrors every frame about the vertical axis.
func FlipX(frames []Frame) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		return imaging.FlipH(src)
	})
}

// FlipY mirrors every frame about the horizontal axis.
func FlipY(frames []Frame) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		return imaging.FlipV(src)
	})
}
