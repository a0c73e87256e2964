package stego

import (
	"encoding/binary"
	"testing"
)

// exifJPEG builds a JPEG prefix carrying only an APP1 orientation tag.
func exifJPEG(orientation uint16) []byte {
	tiff := []byte{'M', 'M', 0, 0x2A, 0, 0, 0, 8}
	ifd := make([]byte, 2+12+4)
	binary.BigEndian.PutUint16(ifd[0:], 1)
	binary.BigEndian.PutUint16(ifd[2:], 0x0112) // orientation tag
	binary.BigEndian.PutUint16(ifd[4:], 3)      // SHORT
	binary.BigEndian.PutUint32(ifd[6:], 1)
	binary.BigEndian.PutUint16(ifd[10:], orientation)
	tiff = append(tiff, ifd...)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(payload)+2))
	out = append(out, n[:]...)
	return append(out, payload...)
}

func TestExifOrientation(t *testing.T) {
	for o := 1; o <= 8; o++ {
		if got := exifOrientation(exifJPEG(uint16(o))); got != o {
			t.Errorf("Orientation %d read back as %d", o, got)
		}
	}
}

func TestExifOrientationAbsent(t *testing.T) {
	if got := exifOrientation([]byte{0xFF, 0xD8, 0xFF, 0xD9}); got != 1 {
		t.Errorf("JPEG without EXIF: got %d, want 1", got)
	}
	if got := exifOrientation([]byte("PNG...")); got != 1 {
		t.Errorf("Non-JPEG input: got %d, want 1", got)
	}
	if got := exifOrientation(exifJPEG(11)); got != 1 {
		t.Errorf("Out-of-range tag value: got %d, want 1", got)
	}
}

func TestBakeOrientationSwapsAxes(t *testing.T) {
	img := noiseImage(40, 20)
	for _, o := range []int{5, 6, 7, 8} {
		baked := bakeOrientation(img, o)
		if baked.Bounds().Dx() != 20 || baked.Bounds().Dy() != 40 {
			t.Errorf("Orientation %d produced %dx%d, want 20x40",
				o, baked.Bounds().Dx(), baked.Bounds().Dy())
		}
	}
	for _, o := range []int{1, 2, 3, 4} {
		baked := bakeOrientation(img, o)
		if baked.Bounds().Dx() != 40 || baked.Bounds().Dy() != 20 {
			t.Errorf("Orientation %d produced %dx%d, want 40x20",
				o, baked.Bounds().Dx(), baked.Bounds().Dy())
		}
	}
}
