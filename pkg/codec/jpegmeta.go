package codec

import (
	"encoding/binary"
	"fmt"
)

// parseJPEGMeta walks the JPEG segment stream: SOF markers give dimensions,
// precision, component count, and the progressive flag; APP0 (JFIF) and APP1
// (EXIF) give density.
func parseJPEGMeta(b []byte, m *Metadata) {
	m.ColorSpace = "srgb"
	i := 2 // skip 0xFF 0xD8
	for i+4 <= len(b) {
		if b[i] != 0xFF {
			i++
			continue
		}
		marker := b[i+1]
		if marker == 0xDA { // start of scan
			break
		}
		segLen := int(b[i+2])<<8 | int(b[i+3])
		if segLen < 2 {
			break
		}
		seg := b[i+4:]
		if len(seg) > segLen-2 {
			seg = seg[:segLen-2]
		}
		switch {
		case marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC:
			// SOFn: precision(1) height(2) width(2) components(1)
			if len(seg) >= 6 {
				m.BitDepth = int(seg[0])
				m.Height = int(binary.BigEndian.Uint16(seg[1:3]))
				m.Width = int(binary.BigEndian.Uint16(seg[3:5]))
				switch seg[5] {
				case 1:
					m.ColorSpace = "gray"
				case 4:
					m.ColorSpace = "cmyk"
				}
			}
			m.Progressive = marker == 0xC2 || marker == 0xC6 || marker == 0xCA || marker == 0xCE
		case marker == 0xE0: // APP0 / JFIF
			if len(seg) >= 12 && string(seg[:5]) == "JFIF\x00" {
				units := seg[7]
				xDensity := int(binary.BigEndian.Uint16(seg[8:10]))
				if units == 1 && xDensity > 0 { // dots per inch
					m.DPI = xDensity
				}
			}
		case marker == 0xE1: // APP1 / EXIF
			if m.DPI == 0 && len(seg) >= 6 && string(seg[:6]) == "Exif\x00\x00" {
				if dpi, err := exifXResolution(seg[6:]); err == nil && dpi > 0 {
					m.DPI = dpi
				}
			}
		}
		i += 2 + segLen
	}
}

// exifXResolution reads the XResolution rational (tag 0x011A) out of IFD0 of
// a TIFF blob.
func exifXResolution(tiff []byte) (int, error) {
	if len(tiff) < 8 {
		return 0, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch {
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	default:
		return 0, fmt.Errorf("unknown tiff byte order")
	}
	if order.Uint16(tiff[2:4]) != 0x002A {
		return 0, fmt.Errorf("invalid tiff magic")
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd+2 > len(tiff) {
		return 0, fmt.Errorf("ifd truncated")
	}
	n := int(order.Uint16(tiff[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(tiff) {
			break
		}
		tag := order.Uint16(tiff[ent : ent+2])
		typ := order.Uint16(tiff[ent+2 : ent+4])
		if tag != 0x011A || typ != 5 { // RATIONAL
			continue
		}
		off := int(order.Uint32(tiff[ent+8 : ent+12]))
		if off+8 > len(tiff) {
			break
		}
		num := order.Uint32(tiff[off : off+4])
		den := order.Uint32(tiff[off+4 : off+8])
		if den == 0 {
			break
		}
		return int(num / den), nil
	}
	return 0, fmt.Errorf("no XResolution tag")
}
