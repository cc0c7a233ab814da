package codec

import (
	"bytes"
	"image"
	"image/draw"
	"image/gif"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

// Decoded is a canonical in-memory image: an ordered frame list plus source
// format. Static images decode to a single frame with delay 0.
type Decoded struct {
	Format   Format
	Frames   []raster.Frame
	Width    int
	Height   int
	Animated bool
}

// Decode turns raw bytes into a Decoded. Multi-frame GIFs are coalesced so
// every frame is a full raster regardless of inter-frame disposal tricks.
func Decode(b []byte) (*Decoded, error) {
	format := DetectFormat(b)
	if format == FormatGIF {
		return decodeGIF(b)
	}
	img, name, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, pverr.Decode("unreadable image data", err)
	}
	if format == FormatUnknown {
		format = Format(name)
	}
	n := raster.ToNRGBA(img)
	bounds := n.Bounds()
	return &Decoded{
		Format: format,
		Frames: raster.StaticFrame(n),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// decodeGIF expands every frame onto a full canvas, honoring per-frame
// disposal, so operators see N independent full-size rasters.
func decodeGIF(b []byte) (*Decoded, error) {
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, pverr.Decode("unreadable gif data", err)
	}
	if len(g.Image) == 0 {
		return nil, pverr.Decode("gif has no frames", nil)
	}
	w := g.Config.Width
	h := g.Config.Height
	if w == 0 || h == 0 {
		first := g.Image[0].Bounds()
		w, h = first.Dx(), first.Dy()
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	frames := make([]raster.Frame, 0, len(g.Image))
	for i, frame := range g.Image {
		previous := image.NewRGBA(canvas.Rect)
		copy(previous.Pix, canvas.Pix)
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		frames = append(frames, raster.Frame{Image: raster.ToNRGBA(canvas), Delay: delay})
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				canvas = image.NewRGBA(image.Rect(0, 0, w, h))
			case gif.DisposalPrevious:
				canvas = previous
			}
		}
	}
	return &Decoded{
		Format:   FormatGIF,
		Frames:   frames,
		Width:    w,
		Height:   h,
		Animated: len(frames) > 1,
	}, nil
}
