package stego

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalyzeMetrics(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	stegoPath := filepath.Join(tmpDir, "stego.png")

	// Case 1: Identical Images
	// MSE should be 0, PSNR should be infinite
	img1 := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	saveImage(t, origPath, img1)
	saveImage(t, stegoPath, img1)

	result, err := Analyze(origPath, stegoPath)
	if err != nil {
		t.Fatalf("Analyze failed for identical images: %v", err)
	}

	if result.MSE != 0 {
		t.Errorf("Expected MSE 0 for identical images, got %f", result.MSE)
	}
	if !math.IsInf(result.PSNR, 1) {
		t.Errorf("Expected PSNR +Inf for identical images, got %f", result.PSNR)
	}

	// Case 2: Known Difference
	// Change 1 pixel in 1 channel by a value of 10.
	// Image size 10x10 = 100 pixels.
	// MSE = sum((diff)^2) / (pixels * 3)
	// MSE = (10^2) / (100 * 3) = 100 / 300 = 0.333...
	img2 := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	img2.Set(0, 0, color.NRGBA{R: 10, G: 0, B: 0, A: 255})
	saveImage(t, stegoPath, img2)

	result, err = Analyze(origPath, stegoPath)
	if err != nil {
		t.Fatalf("Analyze failed for modified image: %v", err)
	}

	expectedMSE := 100.0 / 300.0
	if math.Abs(result.MSE-expectedMSE) > 0.0001 {
		t.Errorf("MSE calculation incorrect. Got %f, want %f", result.MSE, expectedMSE)
	}

	expectedPSNR := 10 * math.Log10((255*255)/expectedMSE)
	if math.Abs(result.PSNR-expectedPSNR) > 0.0001 {
		t.Errorf("PSNR calculation incorrect. Got %f, want %f", result.PSNR, expectedPSNR)
	}

	// The heatmap must be a decodable PNG of the same dimensions, with the
	// touched pixel marked and an untouched one black.
	heatmap, err := png.Decode(bytes.NewReader(result.Heatmap))
	if err != nil {
		t.Fatalf("Heatmap is not a valid PNG: %v", err)
	}
	if heatmap.Bounds().Dx() != 10 || heatmap.Bounds().Dy() != 10 {
		t.Fatalf("Heatmap is %dx%d, want 10x10", heatmap.Bounds().Dx(), heatmap.Bounds().Dy())
	}
	if r, g, b, _ := heatmap.At(0, 0).RGBA(); r == 0 && g == 0 && b == 0 {
		t.Error("Modified pixel is black in the heatmap")
	}
	if r, g, b, _ := heatmap.At(5, 5).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Error("Untouched pixel is not black in the heatmap")
	}
}

func TestAnalyzeDimensionMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := filepath.Join(tmpDir, "orig.png")
	stegoPath := filepath.Join(tmpDir, "stego.png")

	saveImage(t, origPath, image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	saveImage(t, stegoPath, image.NewNRGBA(image.Rect(0, 0, 12, 10)))

	if _, err := Analyze(origPath, stegoPath); err == nil {
		t.Error("Expected an error for mismatched dimensions")
	}
}

func saveImage(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode png to %s: %v", path, err)
	}
}
