package stego

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDigestDeterministic(t *testing.T) {
	img := solidImage(120, 90, color.NRGBA{104, 104, 104, 255})
	photo, err := encodePNG(img)
	if err != nil {
		t.Fatalf("Failed to encode photo: %v", err)
	}
	a, err := ComputeDigest(photo)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	b, err := ComputeDigest(photo)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if a != b {
		t.Error("Same bytes produced different digests")
	}
}

func TestDigestSurvivesRecompression(t *testing.T) {
	// The same photo as a PNG and as JPEGs of different quality must
	// normalize to the same digest. Pixel values sit mid-bucket so
	// recompression wobble cannot cross a quantization boundary.
	img := solidImage(120, 90, color.NRGBA{104, 104, 104, 255})

	png, err := encodePNG(img)
	if err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	ref, err := ComputeDigest(png)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}

	for _, quality := range []int{95, 75} {
		jpg, err := encodeJPEG(img, quality)
		if err != nil {
			t.Fatalf("Failed to encode JPEG at q%d: %v", quality, err)
		}
		got, err := ComputeDigest(jpg)
		if err != nil {
			t.Fatalf("Digest of q%d JPEG failed: %v", quality, err)
		}
		if got != ref {
			t.Errorf("Digest of q%d JPEG differs from the PNG digest", quality)
		}
	}
}

func TestDigestDistinguishesPhotos(t *testing.T) {
	a, err := encodePNG(solidImage(100, 100, color.NRGBA{104, 104, 104, 255}))
	if err != nil {
		t.Fatalf("Failed to encode photo: %v", err)
	}
	b, err := encodePNG(solidImage(100, 100, color.NRGBA{200, 104, 40, 255}))
	if err != nil {
		t.Fatalf("Failed to encode photo: %v", err)
	}
	da, err := ComputeDigest(a)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	db, err := ComputeDigest(b)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if da == db {
		t.Error("Different photos produced the same digest")
	}
}

func TestDigestRejectsGarbage(t *testing.T) {
	if _, err := ComputeDigest([]byte("not an image")); err == nil {
		t.Error("Expected an error for non-image input")
	}
}
