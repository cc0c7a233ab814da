package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 200
		img.Pix[i+3] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeTestGIF(t *testing.T, frames int) []byte {
	t.Helper()
	g := &gif.GIF{}
	pal := color.Palette{color.Black, color.White}
	for i := 0; i < frames; i++ {
		pm := image.NewPaletted(image.Rect(0, 0, 10, 8), pal)
		for p := range pm.Pix {
			pm.Pix[p] = uint8(i % 2)
		}
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	if got := DetectFormat(encodePNG(t, 3, 3)); got != FormatPNG {
		t.Errorf("png detected as %q", got)
	}
	if got := DetectFormat(encodeTestGIF(t, 2)); got != FormatGIF {
		t.Errorf("gif detected as %q", got)
	}
	if got := DetectFormat([]byte{0xFF, 0xD8, 0xFF, 0xE0}); got != FormatJPEG {
		t.Errorf("jpeg detected as %q", got)
	}
	if got := DetectFormat([]byte("garbage")); got != FormatUnknown {
		t.Errorf("junk detected as %q", got)
	}
}

func TestDecodeStaticPNG(t *testing.T) {
	d, err := Decode(encodePNG(t, 12, 7))
	if err != nil {
		t.Fatal(err)
	}
	if d.Format != FormatPNG || d.Animated {
		t.Fatalf("format=%q animated=%v", d.Format, d.Animated)
	}
	if len(d.Frames) != 1 || d.Width != 12 || d.Height != 7 {
		t.Fatalf("frames=%d dims=%dx%d", len(d.Frames), d.Width, d.Height)
	}
}

func TestDecodeAnimatedGIF(t *testing.T) {
	d, err := Decode(encodeTestGIF(t, 4))
	if err != nil {
		t.Fatal(err)
	}
	if !d.Animated || len(d.Frames) != 4 {
		t.Fatalf("animated=%v frames=%d", d.Animated, len(d.Frames))
	}
	for i, f := range d.Frames {
		if f.Delay != 5 {
			t.Errorf("frame %d delay = %d, want 5", i, f.Delay)
		}
		b := f.Image.Bounds()
		if b.Dx() != 10 || b.Dy() != 8 {
			t.Errorf("frame %d dims %dx%d", i, b.Dx(), b.Dy())
		}
	}
}

func TestDecodeGarbageIsDecodeError(t *testing.T) {
	_, err := Decode([]byte("not an image at all"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !pverr.IsKind(err, pverr.KindDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	src, err := Decode(encodePNG(t, 9, 9))
	if err != nil {
		t.Fatal(err)
	}
	b, format, err := Encode(src.Frames, FormatPNG, DefaultGIFOptions())
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatPNG {
		t.Fatalf("format = %q", format)
	}
	back, err := Decode(b)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if back.Width != 9 || back.Height != 9 {
		t.Fatalf("round trip dims %dx%d", back.Width, back.Height)
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	_, _, err := Encode(nil, FormatPNG, DefaultGIFOptions())
	if !pverr.IsKind(err, pverr.KindEncode) {
		t.Fatalf("expected encode error, got %v", err)
	}
	_, _, err = Encode([]raster.Frame{{Image: image.NewNRGBA(image.Rect(0, 0, 0, 0))}}, FormatPNG, DefaultGIFOptions())
	if !pverr.IsKind(err, pverr.KindEncode) {
		t.Fatalf("expected encode error for zero dims, got %v", err)
	}
}

func TestGIFEncodeRoundTrip(t *testing.T) {
	src, err := Decode(encodeTestGIF(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := EncodeGIF(&buf, src.Frames, DefaultGIFOptions()); err != nil {
		t.Fatal(err)
	}
	back, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Frames) != 3 {
		t.Fatalf("round trip frames = %d", len(back.Frames))
	}
	if back.Frames[1].Delay != 5 {
		t.Fatalf("round trip delay = %d", back.Frames[1].Delay)
	}
}

func TestIsAnimated(t *testing.T) {
	if IsAnimated(encodePNG(t, 2, 2)) {
		t.Error("static png reported animated")
	}
	if IsAnimated(encodeTestGIF(t, 1)) {
		t.Error("single-frame gif reported animated")
	}
	if !IsAnimated(encodeTestGIF(t, 2)) {
		t.Error("multi-frame gif not reported animated")
	}
}

func TestExtractMetadataPNG(t *testing.T) {
	m, err := ExtractMetadata("shot", encodePNG(t, 33, 21))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "shot" || m.Format != FormatPNG {
		t.Fatalf("name=%q format=%q", m.Name, m.Format)
	}
	if m.Width != 33 || m.Height != 21 {
		t.Fatalf("dims %dx%d", m.Width, m.Height)
	}
	if m.Frames != 1 || m.BitDepth != 8 {
		t.Fatalf("frames=%d bitDepth=%d", m.Frames, m.BitDepth)
	}
	if !m.Alpha || m.ColorSpace != "srgb" {
		t.Fatalf("alpha=%v space=%q", m.Alpha, m.ColorSpace)
	}
	if m.Size != int64(len(encodePNG(t, 33, 21))) {
		t.Fatalf("size = %d", m.Size)
	}
}

func TestExtractMetadataGIF(t *testing.T) {
	m, err := ExtractMetadata("anim", encodeTestGIF(t, 5))
	if err != nil {
		t.Fatal(err)
	}
	if m.Frames != 5 {
		t.Fatalf("frames = %d, want 5", m.Frames)
	}
	if m.ColorSpace != "indexed" {
		t.Fatalf("space = %q", m.ColorSpace)
	}
	if m.Width != 10 || m.Height != 8 {
		t.Fatalf("dims %dx%d", m.Width, m.Height)
	}
}

func TestReadableSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{-1, "?"},
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2 kB"},
	}
	for _, c := range cases {
		m := &Metadata{Size: c.size}
		if got := m.ReadableSize(); got != c.want {
			t.Errorf("ReadableSize(%d) = %q, want %q", c.size, got, c.want)
		}
	}
}

func TestSupportsAnimatedFilter(t *testing.T) {
	for _, op := range []string{"rotate", "resize", "blur"} {
		if SupportsAnimatedFilter(op) {
			t.Errorf("no native animated path exists, but %q reported supported", op)
		}
	}
}
