package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Fepozopo/pixelview/pkg/pverr"
)

// Metadata is the read-only introspection schema for one image. Zero values
// of DPI and BitDepth mean "unknown" (several codecs do not expose them);
// Size is -1 when neither the decode nor a filesystem stat produced one.
type Metadata struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        int64  `json:"size"`
	Format      Format `json:"format"`
	DPI         int    `json:"dpi"`
	Frames      int    `json:"frames"`
	ColorSpace  string `json:"space"`
	BitDepth    int    `json:"bitDepth"`
	Progressive bool   `json:"progressive"`
	Alpha       bool   `json:"alpha"`
}

// ReadableSize formats Size for display, "?" when unknown.
func (m *Metadata) ReadableSize() string {
	if m.Size < 0 {
		return "?"
	}
	if m.Size == 0 {
		return "0 B"
	}
	units := []string{"B", "kB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(m.Size)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(m.Size) / math.Pow(1024, float64(i))
	return fmt.Sprintf("%.4g %s", v, units[i])
}

// ExtractMetadata parses format headers without a full decode. name is the
// display name reported to the caller.
func ExtractMetadata(name string, b []byte) (*Metadata, error) {
	m := &Metadata{Name: name, Size: int64(len(b)), Frames: 1}
	m.Format = DetectFormat(b)
	switch m.Format {
	case FormatPNG:
		parsePNGMeta(b, m)
	case FormatJPEG:
		parseJPEGMeta(b, m)
	case FormatGIF:
		parseGIFMeta(b, m)
	case FormatWEBP:
		parseWEBPMeta(b, m)
	case FormatBMP:
		parseBMPMeta(b, m)
	default:
		return nil, pverr.Decode("unknown image format", nil)
	}
	return m, nil
}

func parsePNGMeta(b []byte, m *Metadata) {
	if len(b) < 29 {
		return
	}
	m.Width = int(binary.BigEndian.Uint32(b[16:20]))
	m.Height = int(binary.BigEndian.Uint32(b[20:24]))
	m.BitDepth = int(b[24])
	colorType := b[25]
	m.Progressive = len(b) > 28 && b[28] == 1 // Adam7 interlace
	switch colorType {
	case 0:
		m.ColorSpace = "gray"
	case 2:
		m.ColorSpace = "srgb"
	case 3:
		m.ColorSpace = "indexed"
	case 4:
		m.ColorSpace = "gray"
		m.Alpha = true
	case 6:
		m.ColorSpace = "srgb"
		m.Alpha = true
	}
	if !m.Alpha && findPNGChunk(b, "tRNS") >= 0 {
		m.Alpha = true
	}
	if off := findPNGChunk(b, "pHYs"); off >= 0 && off+9 <= len(b) {
		ppm := binary.BigEndian.Uint32(b[off : off+4])
		if b[off+8] == 1 { // pixels per meter
			m.DPI = int(math.Round(float64(ppm) * 0.0254))
		}
	}
	if off := findPNGChunk(b, "acTL"); off >= 0 && off+4 <= len(b) {
		if n := int(binary.BigEndian.Uint32(b[off : off+4])); n > 0 {
			m.Frames = n
		}
	}
}

func parseGIFMeta(b []byte, m *Metadata) {
	if len(b) < 13 {
		return
	}
	m.Width = int(binary.LittleEndian.Uint16(b[6:8]))
	m.Height = int(binary.LittleEndian.Uint16(b[8:10]))
	m.ColorSpace = "indexed"
	m.BitDepth = int((b[10]>>4)&0x07) + 1 // color resolution
	if n := countGIFFrames(b); n > 0 {
		m.Frames = n
	}
	m.Alpha = gifHasTransparency(b)
	// interlace flag of the first image descriptor
	if pos := findGIFImageDescriptor(b); pos >= 0 && pos+10 <= len(b) {
		m.Progressive = b[pos+9]&0x40 != 0
	}
}

func gifHasTransparency(b []byte) bool {
	pos := 13
	if b[10]&0x80 != 0 {
		pos += 3 * (1 << ((b[10] & 0x07) + 1))
	}
	for pos+1 < len(b) {
		if b[pos] == 0x21 && b[pos+1] == 0xF9 && pos+3 < len(b) {
			return b[pos+3]&0x01 != 0
		}
		if b[pos] == 0x2C || b[pos] == 0x3B {
			return false
		}
		pos++
	}
	return false
}

func findGIFImageDescriptor(b []byte) int {
	if len(b) < 13 {
		return -1
	}
	pos := 13
	if b[10]&0x80 != 0 {
		pos += 3 * (1 << ((b[10] & 0x07) + 1))
	}
	for pos < len(b) {
		switch b[pos] {
		case 0x21:
			pos += 2
			pos = skipGIFSubBlocks(b, pos)
		case 0x2C:
			return pos
		default:
			return -1
		}
	}
	return -1
}

func parseWEBPMeta(b []byte, m *Metadata) {
	m.ColorSpace = "srgb"
	m.BitDepth = 8
	if len(b) < 30 {
		return
	}
	switch string(b[12:16]) {
	case "VP8X":
		flags := b[20]
		m.Alpha = flags&0x10 != 0
		if flags&0x02 != 0 {
			m.Frames = countWEBPFrames(b)
		}
		m.Width = 1 + int(uint32(b[24])|uint32(b[25])<<8|uint32(b[26])<<16)
		m.Height = 1 + int(uint32(b[27])|uint32(b[28])<<8|uint32(b[29])<<16)
	case "VP8 ":
		// lossy bitstream: frame tag then start code 0x9d 0x01 0x2a
		if len(b) >= 30 && b[23] == 0x9d && b[24] == 0x01 && b[25] == 0x2a {
			m.Width = int(binary.LittleEndian.Uint16(b[26:28]) & 0x3fff)
			m.Height = int(binary.LittleEndian.Uint16(b[28:30]) & 0x3fff)
		}
	case "VP8L":
		if len(b) >= 25 && b[20] == 0x2f {
			bits := binary.LittleEndian.Uint32(b[21:25])
			m.Width = int(bits&0x3fff) + 1
			m.Height = int((bits>>14)&0x3fff) + 1
			m.Alpha = bits>>28&1 != 0
		}
	}
	if m.Frames == 0 {
		m.Frames = 1
	}
}

func countWEBPFrames(b []byte) int {
	// count ANMF chunks in the RIFF container
	frames := 0
	pos := 12
	for pos+8 <= len(b) {
		tag := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		if tag == "ANMF" {
			frames++
		}
		pos += 8 + size + size%2
	}
	if frames == 0 {
		return 1
	}
	return frames
}

func parseBMPMeta(b []byte, m *Metadata) {
	if len(b) < 30 {
		return
	}
	m.Width = int(int32(binary.LittleEndian.Uint32(b[18:22])))
	h := int(int32(binary.LittleEndian.Uint32(b[22:26])))
	if h < 0 {
		h = -h
	}
	m.Height = h
	bpp := int(binary.LittleEndian.Uint16(b[28:30]))
	m.BitDepth = bpp
	switch {
	case bpp <= 8:
		m.ColorSpace = "indexed"
	case bpp == 32:
		m.ColorSpace = "srgb"
		m.Alpha = true
	default:
		m.ColorSpace = "srgb"
	}
}
