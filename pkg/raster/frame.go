// Package raster implements the fixed catalogue of pixel-transform operators.
// Every operator is a pure function over a frame list: static images are a
// 1-frame list, animated images carry one frame per animation step. The same
// per-frame logic runs in both cases, so a document looks identical whether
// it has 1 frame or N.
package raster

import "image"

// Frame is one decoded raster plus its display delay in 1/100s of a second.
// The delay is zero for static images.
type Frame struct {
	Image *image.NRGBA
	Delay int
}

// mapFrames applies fn to every frame, preserving order and delays.
func mapFrames(frames []Frame, fn func(*image.NRGBA) *image.NRGBA) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = Frame{Image: fn(f.Image), Delay: f.Delay}
	}
	return out
}

// StaticFrame wraps a single raster as a 1-frame list.
func StaticFrame(img *image.NRGBA) []Frame {
	return []Frame{{Image: img}}
}
