package codec

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"

	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

const jpegQuality = 92

// GIFOptions tune the animated encode path.
type GIFOptions struct {
	// TransparentColor, when set, marks exact-match pixels as the GIF
	// transparency key.
	TransparentColor *color.NRGBA
	// Quality is the quantizer quality knob, fixed to DefaultGIFQuality by
	// the session.
	Quality int
	// LoopForever sets the NETSCAPE loop extension to repeat indefinitely.
	LoopForever bool
}

// DefaultGIFOptions match the committed-edit path: fixed quality, repeat
// forever, no transparency key.
func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Quality: DefaultGIFQuality, LoopForever: true}
}

// Encode serializes frames in the given format. Multi-frame lists always
// encode as GIF. Formats without a Go encoder (webp) fall back to PNG; the
// returned Format is the one actually written.
func Encode(frames []raster.Frame, format Format, gifOpts GIFOptions) ([]byte, Format, error) {
	if len(frames) == 0 {
		return nil, format, pverr.Encode("no frames to encode", nil)
	}
	for _, f := range frames {
		if f.Image == nil || f.Image.Bounds().Dx() == 0 || f.Image.Bounds().Dy() == 0 {
			return nil, format, pverr.Encode("zero-dimension frame", nil)
		}
	}
	if len(frames) > 1 || format == FormatGIF {
		var buf bytes.Buffer
		if err := EncodeGIF(&buf, frames, gifOpts); err != nil {
			return nil, FormatGIF, err
		}
		return buf.Bytes(), FormatGIF, nil
	}

	img := frames[0].Image
	var buf bytes.Buffer
	var err error
	out := format
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		// png, webp (decode-only), and anything unknown
		out = FormatPNG
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, out, pverr.Encode("encode "+string(out), err)
	}
	return buf.Bytes(), out, nil
}
