package codec

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"runtime"

	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

// DefaultGIFQuality mirrors the fixed quantizer setting of the edit
// pipeline; the stdlib quantizer has no quality knob, so the value is kept
// for option-surface compatibility.
const DefaultGIFQuality = 10

// EncodeGIF writes frames as an animated GIF. Frames are quantized one at a
// time and the encoder yields the scheduler between frames so a long encode
// does not starve other goroutines.
func EncodeGIF(w io.Writer, frames []raster.Frame, opts GIFOptions) error {
	if len(frames) == 0 {
		return pverr.Encode("no frames to encode", nil)
	}
	bounds := frames[0].Image.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return pverr.Encode("zero-dimension frame", nil)
	}

	pal := framePalette(opts.TransparentColor)
	out := &gif.GIF{
		Image:    make([]*image.Paletted, 0, len(frames)),
		Delay:    make([]int, 0, len(frames)),
		Disposal: make([]byte, 0, len(frames)),
		Config: image.Config{
			ColorModel: pal,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}
	if opts.LoopForever {
		out.LoopCount = 0
	} else {
		out.LoopCount = -1
	}

	for _, f := range frames {
		src := f.Image
		if opts.TransparentColor != nil {
			src = keyOutColor(src, *opts.TransparentColor)
		}
		pm := image.NewPaletted(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()), pal)
		draw.FloydSteinberg.Draw(pm, pm.Bounds(), src, src.Bounds().Min)
		out.Image = append(out.Image, pm)
		out.Delay = append(out.Delay, f.Delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)
		// quantization dominates encode time; give other goroutines a turn
		runtime.Gosched()
	}

	if err := gif.EncodeAll(w, out); err != nil {
		return pverr.Encode("gif encode", err)
	}
	return nil
}

// framePalette is Plan9 with the first entry swapped for full transparency
// when a transparency key is in use.
func framePalette(transparent *color.NRGBA) color.Palette {
	if transparent == nil {
		return palette.Plan9
	}
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.NRGBA{})
	pal = append(pal, palette.Plan9[:255]...)
	return pal
}

// keyOutColor replaces exact matches of the key color with transparent
// pixels so the quantizer maps them to the transparent palette entry.
func keyOutColor(src *image.NRGBA, key color.NRGBA) *image.NRGBA {
	out := raster.CloneNRGBA(src)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] == key.R && out.Pix[i+1] == key.G && out.Pix[i+2] == key.B {
			out.Pix[i+3] = 0
		}
	}
	return out
}
