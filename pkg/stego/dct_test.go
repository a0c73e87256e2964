package stego

import (
	"math"
	"testing"
)

func TestDCTInverse(t *testing.T) {
	var block [blockSize][blockSize]float64
	for y := 0; y < blockSize; y++ {
		for x := 0; x < blockSize; x++ {
			block[y][x] = float64((y*blockSize + x*3) % 256)
		}
	}
	out := idct2d(dct2d(block))
	for y := 0; y < blockSize; y++ {
		for x := 0; x < blockSize; x++ {
			if math.Abs(out[y][x]-block[y][x]) > 1e-9 {
				t.Fatalf("Inverse transform off at (%d,%d): got %g, want %g", x, y, out[y][x], block[y][x])
			}
		}
	}
}

func TestParityEmbedRead(t *testing.T) {
	for _, c := range []float64{-300, -25, -0.4, 0, 11.7, 23.9, 24.1, 100, 500} {
		for _, bit := range []uint8{0, 1} {
			embedded := embedParity(c, bit)
			if got := readParity(embedded); got != bit {
				t.Errorf("embedParity(%g, %d) read back as %d", c, bit, got)
			}
			if math.Abs(embedded-c) > dctQuantStep {
				t.Errorf("embedParity(%g, %d) moved the coefficient by %g, more than one step", c, bit, math.Abs(embedded-c))
			}
		}
	}
}

func TestParityToleratesRoundingNoise(t *testing.T) {
	// Pixel rounding perturbs recomputed coefficients by a few units; the
	// parity read must not flip under noise well inside half a step.
	for _, c := range []float64{-220, -48, 0, 72, 313} {
		for _, bit := range []uint8{0, 1} {
			embedded := embedParity(c, bit)
			for _, noise := range []float64{-5, -2, 2, 5} {
				if got := readParity(embedded + noise); got != bit {
					t.Errorf("Parity of %g flipped under noise %g", embedded, noise)
				}
			}
		}
	}
}

func TestDCTCapacityMonotonic(t *testing.T) {
	small := dctCapacity(96, 96)
	large := dctCapacity(512, 512)
	if small <= 0 || large <= small {
		t.Errorf("Capacity not growing with carrier size: %d vs %d", small, large)
	}
	if dctCapacity(8, 8) >= 0 {
		t.Errorf("A single block reported capacity %d, want negative", dctCapacity(8, 8))
	}
}
