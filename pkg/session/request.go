package session

import (
	"math"

	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

// Mode selects between a live preview (broadcast only, history untouched)
// and a committed edit (appended to history).
type Mode int

const (
	Preview Mode = iota
	Commit
)

func (m Mode) String() string {
	if m == Preview {
		return "preview"
	}
	return "commit"
}

// Request is one typed operation parameter set. Each operator gets its own
// variant so parameters are validated statically instead of probed out of an
// untyped state bag.
type Request interface {
	// Name identifies the operator for logging and capability queries.
	Name() string

	validate() error
	transform(frames []raster.Frame) []raster.Frame
	// previewable reports whether the operator participates in real-time
	// preview at all (flips, invert, and pixelate are commit-only).
	previewable() bool
	// animatedPreviewable reports whether a real-time preview may take the
	// per-frame path on an animated source. Only crop is cheap enough.
	animatedPreviewable() bool
}

// CropRequest crops to a rectangle given in percent of the source
// dimensions. Values outside [0,100] are clamped.
type CropRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r CropRequest) Name() string { return "crop" }

func (r CropRequest) validate() error {
	if clampPercent(r.Width) == 0 || clampPercent(r.Height) == 0 {
		return pverr.Validation("crop width and height must be non-zero")
	}
	return nil
}

func (r CropRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.CropPercent(frames,
		clampPercent(r.X), clampPercent(r.Y),
		clampPercent(r.Width), clampPercent(r.Height))
}

func (r CropRequest) previewable() bool         { return true }
func (r CropRequest) animatedPreviewable() bool { return true }

// ResizeRequest scales to width x height (fit fill, cubic kernel), or to
// percentages of the source dimensions when Percent is set.
type ResizeRequest struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Percent bool    `json:"percent"`
}

func (r ResizeRequest) Name() string { return "resize" }

func (r ResizeRequest) validate() error {
	if !isFinite(r.Width) || !isFinite(r.Height) || r.Width <= 0 || r.Height <= 0 {
		return pverr.Validation("resize dimensions must be positive finite numbers")
	}
	return nil
}

func (r ResizeRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.Resize(frames, r.Width, r.Height, r.Percent)
}

func (r ResizeRequest) previewable() bool         { return true }
func (r ResizeRequest) animatedPreviewable() bool { return false }

// RotateRequest rotates clockwise by an arbitrary angle in [-180,180].
type RotateRequest struct {
	Degrees float64 `json:"degrees"`
}

func (r RotateRequest) Name() string { return "rotate" }

func (r RotateRequest) validate() error {
	if !isFinite(r.Degrees) {
		return pverr.Validation("rotate degrees must be finite")
	}
	if r.Degrees < -180 || r.Degrees > 180 {
		return pverr.Validation("rotate degrees must be in [-180,180]")
	}
	return nil
}

func (r RotateRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.Rotate(frames, r.Degrees)
}

func (r RotateRequest) previewable() bool         { return true }
func (r RotateRequest) animatedPreviewable() bool { return false }

// BrightnessRequest multiplies lightness and applies a linear contrast remap
// centered on 50% gray. 1.0 is identity for both.
type BrightnessRequest struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

func (r BrightnessRequest) Name() string { return "brightness" }

func (r BrightnessRequest) validate() error {
	if !isFinite(r.Brightness) || !isFinite(r.Contrast) {
		return pverr.Validation("brightness parameters must be finite")
	}
	return nil
}

func (r BrightnessRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.Brightness(frames, r.Brightness, r.Contrast)
}

func (r BrightnessRequest) previewable() bool         { return true }
func (r BrightnessRequest) animatedPreviewable() bool { return false }

// HSLRequest shifts hue (degrees), multiplies saturation, and adds lightness.
type HSLRequest struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
}

func (r HSLRequest) Name() string { return "hsl" }

func (r HSLRequest) validate() error {
	if !isFinite(r.Hue) || !isFinite(r.Saturation) || !isFinite(r.Lightness) {
		return pverr.Validation("hsl parameters must be finite")
	}
	return nil
}

func (r HSLRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.HSL(frames, r.Hue, r.Saturation, r.Lightness)
}

func (r HSLRequest) previewable() bool         { return true }
func (r HSLRequest) animatedPreviewable() bool { return false }

// TintRequest applies a multiplicative tint with the given hex color.
type TintRequest struct {
	Color string `json:"color"`
}

func (r TintRequest) Name() string { return "tint" }

func (r TintRequest) validate() error {
	if _, err := raster.ParseHexColor(r.Color); err != nil {
		return pverr.Validation("invalid tint color")
	}
	return nil
}

func (r TintRequest) transform(frames []raster.Frame) []raster.Frame {
	c, err := raster.ParseHexColor(r.Color)
	if err != nil {
		return frames
	}
	return raster.Tint(frames, c)
}

func (r TintRequest) previewable() bool         { return true }
func (r TintRequest) animatedPreviewable() bool { return false }

// BlurRequest applies gaussian blur then unsharp in one pass.
type BlurRequest struct {
	Blur    float64 `json:"blur"`
	Sharpen float64 `json:"sharpen"`
}

func (r BlurRequest) Name() string { return "blur" }

func (r BlurRequest) validate() error {
	if !isFinite(r.Blur) || !isFinite(r.Sharpen) || r.Blur < 0 {
		return pverr.Validation("blur radius must be >= 0")
	}
	return nil
}

func (r BlurRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.BlurSharpen(frames, r.Blur, r.Sharpen)
}

func (r BlurRequest) previewable() bool         { return true }
func (r BlurRequest) animatedPreviewable() bool { return false }

// BinarizeRequest hard-thresholds to black/white. Threshold is clamped to
// [1,255].
type BinarizeRequest struct {
	Threshold int `json:"threshold"`
}

func (r BinarizeRequest) Name() string { return "binarize" }

func (r BinarizeRequest) validate() error { return nil }

func (r BinarizeRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.Binarize(frames, r.Threshold)
}

func (r BinarizeRequest) previewable() bool         { return true }
func (r BinarizeRequest) animatedPreviewable() bool { return false }

// PixelateRequest blocks the image with the given factor. Commit-only: the
// live preview renders client-side and records its final raster through
// AppendHistoryState.
type PixelateRequest struct {
	Factor int `json:"factor"`
}

func (r PixelateRequest) Name() string { return "pixelate" }

func (r PixelateRequest) validate() error {
	if r.Factor < 1 {
		return pverr.Validation("pixelate factor must be >= 1")
	}
	return nil
}

func (r PixelateRequest) transform(frames []raster.Frame) []raster.Frame {
	return raster.Pixelate(frames, r.Factor)
}

func (r PixelateRequest) previewable() bool         { return false }
func (r PixelateRequest) animatedPreviewable() bool { return false }

// FlipXRequest mirrors about the vertical axis. Commit-only.
type FlipXRequest struct{}

func (FlipXRequest) Name() string                            { return "flipX" }
func (FlipXRequest) validate() error                         { return nil }
func (FlipXRequest) transform(f []raster.Frame) []raster.Frame { return raster.FlipX(f) }
func (FlipXRequest) previewable() bool                       { return false }
func (FlipXRequest) animatedPreviewable() bool               { return false }

// FlipYRequest mirrors about the horizontal axis. Commit-only.
type FlipYRequest struct{}

func (FlipYRequest) Name() string                            { return "flipY" }
func (FlipYRequest) validate() error                         { return nil }
func (FlipYRequest) transform(f []raster.Frame) []raster.Frame { return raster.FlipY(f) }
func (FlipYRequest) previewable() bool                       { return false }
func (FlipYRequest) animatedPreviewable() bool               { return false }

// InvertRequest negates every color channel. Commit-only.
type InvertRequest struct{}

func (InvertRequest) Name() string                            { return "invert" }
func (InvertRequest) validate() error                         { return nil }
func (InvertRequest) transform(f []raster.Frame) []raster.Frame { return raster.Invert(f) }
func (InvertRequest) previewable() bool                       { return false }
func (InvertRequest) animatedPreviewable() bool               { return false }

// GIFEffectsRequest re-times an animated GIF: playback speed by frame
// skipping, optional reversal, optional transparency key. Non-GIF entries in
// a bulk set are left unchanged.
type GIFEffectsRequest struct {
	Speed            float64 `json:"speed"`
	Reverse          bool    `json:"reverse"`
	Transparency     bool    `json:"transparency"`
	TransparentColor string  `json:"transparentColor"`
}

func (r GIFEffectsRequest) Name() string { return "gifEffects" }

func (r GIFEffectsRequest) validate() error {
	if !isFinite(r.Speed) || r.Speed <= 0 {
		return pverr.Validation("gif speed must be a positive finite number")
	}
	if r.Transparency {
		if _, err := raster.ParseHexColor(r.TransparentColor); err != nil {
			return pverr.Validation("invalid transparent color")
		}
	}
	return nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
