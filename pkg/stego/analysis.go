package stego

import (
	"fmt"
	"math"
)

// AnalysisResult holds distortion metrics for a carrier/stego pair plus a
// difference heatmap (PNG bytes: black untouched, green slight, red major).
type AnalysisResult struct {
	MSE     float64 // Mean Squared Error over the RGB channels
	PSNR    float64 // Peak Signal-to-Noise Ratio (dB), +Inf for identical images
	Heatmap []byte
}

// Analyze compares a carrier with its stego counterpart. Purely a tooling
// aid; nothing here participates in encode or decode.
func Analyze(originalPath, stegoPath string) (*AnalysisResult, error) {
	origRaw, _, err := loadImage(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load original: %v", err)
	}
	stegoRaw, _, err := loadImage(stegoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load stego image: %v", err)
	}
	orig := copyImage(origRaw)
	stego := copyImage(stegoRaw)
	if orig.Rect != stego.Rect {
		return nil, fmt.Errorf("image dimensions do not match: %v vs %v", orig.Rect, stego.Rect)
	}

	width, height := orig.Rect.Dx(), orig.Rect.Dy()
	heatmap := copyImage(orig)
	var sumSquaredError float64
	for y := 0; y < height; y++ {
		row := orig.PixOffset(0, y)
		for x := 0; x < width; x++ {
			p := row + x*4
			var diffSum float64
			for i := 0; i < 3; i++ {
				diff := float64(orig.Pix[p+i]) - float64(stego.Pix[p+i])
				sumSquaredError += diff * diff
				diffSum += math.Abs(diff)
			}
			intensity := uint8(math.Min(255, diffSum*50))
			heatmap.Pix[p] = intensity
			if diffSum > 0 {
				heatmap.Pix[p+1] = 255 - intensity
			} else {
				heatmap.Pix[p+1] = 0
			}
			heatmap.Pix[p+2] = 0
			heatmap.Pix[p+3] = 255
		}
	}

	mse := sumSquaredError / (float64(width*height) * 3.0)
	psnr := 10 * math.Log10((255*255)/mse)
	png, err := encodePNG(heatmap)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{MSE: mse, PSNR: psnr, Heatmap: png}, nil
}
