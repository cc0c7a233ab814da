// Package codec decodes image references into frame lists and encodes frame
// lists back into bytes. It wraps the stdlib image codecs plus the x/image
// webp and bmp decoders, and owns the GIF-specific streaming encode path.
package codec

import (
	"bytes"
	"encoding/binary"
)

// Format is a detected image format, named by its usual file extension.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatWEBP    Format = "webp"
	FormatBMP     Format = "bmp"
)

var (
	magicPNG  = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicGIF7 = []byte("GIF87a")
	magicGIF9 = []byte("GIF89a")
	magicRIFF = []byte("RIFF")
	magicWEBP = []byte("WEBP")
	magicBMP  = []byte("BM")
)

// DetectFormat sniffs the format from the file signature.
func DetectFormat(b []byte) Format {
	switch {
	case len(b) >= 8 && bytes.Equal(b[:8], magicPNG):
		return FormatPNG
	case len(b) >= 3 && bytes.Equal(b[:3], magicJPEG):
		return FormatJPEG
	case len(b) >= 6 && (bytes.Equal(b[:6], magicGIF7) || bytes.Equal(b[:6], magicGIF9)):
		return FormatGIF
	case len(b) >= 12 && bytes.Equal(b[:4], magicRIFF) && bytes.Equal(b[8:12], magicWEBP):
		return FormatWEBP
	case len(b) >= 2 && bytes.Equal(b[:2], magicBMP):
		return FormatBMP
	}
	return FormatUnknown
}

// IsAnimated reports whether the source carries more than one frame. GIF is
// authoritative (image descriptors are counted); APNG and animated WEBP are
// detected best-effort from their acTL chunk and ANIM flag.
func IsAnimated(b []byte) bool {
	switch DetectFormat(b) {
	case FormatGIF:
		return countGIFFrames(b) > 1
	case FormatPNG:
		return findPNGChunk(b, "acTL") >= 0
	case FormatWEBP:
		return webpHasFlag(b, 0x02)
	}
	return false
}

// countGIFFrames walks the GIF block structure counting image descriptors.
func countGIFFrames(b []byte) int {
	if len(b) < 13 {
		return 0
	}
	pos := 13 // signature + logical screen descriptor
	packed := b[10]
	if packed&0x80 != 0 {
		pos += 3 * (1 << ((packed & 0x07) + 1)) // global color table
	}
	frames := 0
	for pos < len(b) {
		switch b[pos] {
		case 0x21: // extension
			pos += 2
			pos = skipGIFSubBlocks(b, pos)
		case 0x2C: // image descriptor
			frames++
			if pos+10 > len(b) {
				return frames
			}
			local := b[pos+9]
			pos += 10
			if local&0x80 != 0 {
				pos += 3 * (1 << ((local & 0x07) + 1))
			}
			pos++ // LZW minimum code size
			pos = skipGIFSubBlocks(b, pos)
		case 0x3B: // trailer
			return frames
		default:
			return frames
		}
	}
	return frames
}

func skipGIFSubBlocks(b []byte, pos int) int {
	for pos < len(b) {
		size := int(b[pos])
		pos++
		if size == 0 {
			return pos
		}
		pos += size
	}
	return pos
}

// findPNGChunk returns the offset of the chunk's data, or -1.
func findPNGChunk(b []byte, name string) int {
	pos := 8
	for pos+8 <= len(b) {
		length := int(binary.BigEndian.Uint32(b[pos : pos+4]))
		typ := string(b[pos+4 : pos+8])
		if typ == name {
			return pos + 8
		}
		if typ == "IEND" {
			return -1
		}
		pos += 8 + length + 4
	}
	return -1
}

// webpHasFlag checks a VP8X feature flag bit.
func webpHasFlag(b []byte, bit byte) bool {
	if len(b) < 21 || string(b[12:16]) != "VP8X" {
		return false
	}
	return b[20]&bit != 0
}
