package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB<->HSL conversions operate on 0..1 floats.

func rgbToHsl(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		// achromatic
		h = 0
		s = 0
		return
	}
	d := max - min
	if l > 0.5 {
		s = d / (2.0 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h /= 6
	return
}

func hueToRgb(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

func hslToRgb(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		// achromatic
		r = l
		g = l
		b = l
		return
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r = hueToRgb(p, q, h+1.0/3.0)
	g = hueToRgb(p, q, h)
	b = hueToRgb(p, q, h-1.0/3.0)
	return
}

// HSL shifts hue by hueDegrees, multiplies saturation by saturation, and adds
// lightness/100 to the lightness channel of every pixel. Alpha is untouched.
func HSL(frames []Frame, hueDegrees, saturation, lightness float64) []Frame {
	hueShift := hueDegrees / 360.0
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		return modulateOne(src, hueShift, saturation, lightness/100.0)
	})
}

func modulateOne(src *image.NRGBA, hueShift, satFactor, lightDelta float64) *image.NRGBA {
	b := src.Bounds()
	w := b.Dx()
	h := b.Dy()
	out := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x+b.Min.X, y+b.Min.Y)
			r := float64(src.Pix[i+0]) / 255.0
			g := float64(src.Pix[i+1]) / 255.0
			b_ := float64(src.Pix[i+2]) / 255.0
			a := src.Pix[i+3]

			hh, ss, ll := rgbToHsl(r, g, b_)
			hh = math.Mod(hh+hueShift+1.0, 1.0)
			ss = clamp01(ss * satFactor)
			ll = clamp01(ll + lightDelta)
			r2, g2, b2 := hslToRgb(hh, ss, ll)
			out.Pix[i+0] = uint8(clampFloatToUint8(r2 * 255.0))
			out.Pix[i+1] = uint8(clampFloatToUint8(g2 * 255.0))
			out.Pix[i+2] = uint8(clampFloatToUint8(b2 * 255.0))
			out.Pix[i+3] = a
		}
	}
	return out
}

// Brightness multiplies each pixel's lightness by brightness, then applies a
// linear contrast remap centered at 50% gray: out = c*in + (128 - 128*c).
// Both parameters use 1.0 as identity.
func Brightness(frames []Frame, brightness, contrast float64) []Frame {
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		out := src
		if brightness != 1 {
			out = brightnessOne(out, brightness)
		}
		if contrast != 1 {
			out = contrastOne(out, contrast)
		}
		if out == src {
			out = CloneNRGBA(src)
		}
		return out
	})
}

func brightnessOne(src *image.NRGBA, factor float64) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			r := float64(src.Pix[i+0]) / 255.0
			g := float64(src.Pix[i+1]) / 255.0
			b_ := float64(src.Pix[i+2]) / 255.0
			hh, ss, ll := rgbToHsl(r, g, b_)
			ll = clamp01(ll * factor)
			r2, g2, b2 := hslToRgb(hh, ss, ll)
			out.Pix[i+0] = uint8(clampFloatToUint8(r2 * 255.0))
			out.Pix[i+1] = uint8(clampFloatToUint8(g2 * 255.0))
			out.Pix[i+2] = uint8(clampFloatToUint8(b2 * 255.0))
			out.Pix[i+3] = src.Pix[i+3]
		}
	}
	return out
}

func contrastOne(src *image.NRGBA, c float64) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	offset := 128.0 - 128.0*c
	for i := 0; i < len(src.Pix); i += 4 {
		out.Pix[i+0] = uint8(clampFloatToUint8(c*float64(src.Pix[i+0]) + offset))
		out.Pix[i+1] = uint8(clampFloatToUint8(c*float64(src.Pix[i+1]) + offset))
		out.Pix[i+2] = uint8(clampFloatToUint8(c*float64(src.Pix[i+2]) + offset))
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

// Tint applies a multiplicative tint: each channel is scaled by the matching
// channel of the tint color. Alpha is untouched.
func Tint(frames []Frame, tint color.NRGBA) []Frame {
	tr := float64(tint.R) / 255.0
	tg := float64(tint.G) / 255.0
	tb := float64(tint.B) / 255.0
	return mapFrames(frames, func(src *image.NRGBA) *image.NRGBA {
		out := image.NewNRGBA(src.Bounds())
		for i := 0; i < len(src.Pix); i += 4 {
			out.Pix[i+0] = uint8(clampFloatToUint8(float64(src.Pix[i+0]) * tr))
			out.Pix[i+1] = uint8(clampFloatToUint8(float64(src.Pix[i+1]) * tg))
			out.Pix[i+2] = uint8(clampFloatToUint8(float64(src.Pix[i+2]) * tb))
			out.Pix[i+3] = src.Pix[i+3]
		}
		return out
	})
}

// ParseHexColor parses #rgb, #rgba, #rrggbb, and #rrggbbaa color strings.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "#"))
	expand := func(c byte) string { return string([]byte{c, c}) }
	switch len(s) {
	case 3:
		s = expand(s[0]) + expand(s[1]) + expand(s[2]) + "ff"
	case 4:
		s = expand(s[0]) + expand(s[1]) + expand(s[2]) + expand(s[3])
	case 6:
		s += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
