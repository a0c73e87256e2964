package stego

import (
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"
)

// Some pipelines store a rotated sensor image plus an EXIF orientation tag,
// and some re-orient JPEGs losslessly in transit. Embedding coordinates must
// be unambiguous, so the orientation is baked into pixels before embedding;
// on extraction, if no framing is recognized at the stored orientation, the
// raster engines retry the three other quarter-turns before giving up.

// exifOrientation returns the EXIF orientation tag (1-8) from JPEG bytes, or
// 1 when absent or unreadable.
func exifOrientation(data []byte) int {
	if !isJPEG(data) {
		return 1
	}
	pos := 2
	for pos+4 <= len(data) && data[pos] == 0xFF {
		marker := data[pos+1]
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD9) {
			pos += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2:]))
		if marker == 0xDA || pos+2+segLen > len(data) {
			break
		}
		if marker == 0xE1 {
			if o := parseExifSegment(data[pos+4 : pos+2+segLen]); o != 0 {
				return o
			}
		}
		pos += 2 + segLen
	}
	return 1
}

func parseExifSegment(seg []byte) int {
	if len(seg) < 14 || string(seg[:6]) != "Exif\x00\x00" {
		return 0
	}
	tiff := seg[6:]
	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return 0
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd+2 > len(tiff) {
		return 0
	}
	entries := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < entries; i++ {
		off := ifd + 2 + i*12
		if off+12 > len(tiff) {
			return 0
		}
		if order.Uint16(tiff[off:]) == 0x0112 {
			o := int(order.Uint16(tiff[off+8:]))
			if o >= 1 && o <= 8 {
				return o
			}
			return 0
		}
	}
	return 0
}

// bakeOrientation applies the EXIF transform so that (0,0) really is the
// top-left of what the camera saw.
func bakeOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// orientationRetries yields the three lossless quarter-turn variants tried
// when header parsing fails at the stored orientation.
func orientationRetries(img image.Image) []image.Image {
	return []image.Image{
		imaging.Rotate90(img),
		imaging.Rotate180(img),
		imaging.Rotate270(img),
	}
}
