package stego

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func loadImage(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return decodeImage(data)
}

func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return img, format, nil
}

func isJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}

// copyImage produces an independently owned NRGBA copy. The stego image is
// always a new allocation; the carrier is never mutated in place.
func copyImage(img image.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	min := img.Bounds().Min
	for y := 0; y < out.Rect.Max.Y; y++ {
		for x := 0; x < out.Rect.Max.X; x++ {
			out.Set(x, y, img.At(min.X+x, min.Y+y))
		}
	}
	return out
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Bit addressing is LSB-first within each byte, a format constant shared by
// every engine.

func getBit(data []byte, i int) uint8 {
	return (data[i/8] >> (i % 8)) & 1
}

func setBit(data []byte, i int, bit uint8) {
	if bit == 0 {
		data[i/8] &^= 1 << (i % 8)
	} else {
		data[i/8] |= 1 << (i % 8)
	}
}
