package stego

import (
	"crypto/sha256"
	"fmt"

	"github.com/disintegration/imaging"
)

// ReferenceDigest is a perceptual fingerprint of the shared reference photo.
// It is deliberately lossy: two byte-different JPEGs of the same photo must
// normalize to the same digest, so it tolerates recompression noise and is
// not an integrity check of the photo itself.
type ReferenceDigest [32]byte

const (
	digestSide = 64
	// digestBlurSigma absorbs ringing introduced by JPEG recompression.
	digestBlurSigma = 1.5
	// digestLevels quantizes luma so single-unit pixel wobble cannot flip
	// the digest.
	digestLevels = 16
)

// ComputeDigest normalizes a reference photo into its 32-byte fingerprint:
// resize to 64x64, collapse to luminance, blur, quantize to 16 gray levels,
// then SHA-256 the quantized plane.
func ComputeDigest(photo []byte) (ReferenceDigest, error) {
	img, _, err := decodeImage(photo)
	if err != nil {
		return ReferenceDigest{}, fmt.Errorf("%w: reference photo: %v", ErrValidation, err)
	}
	small := imaging.Resize(img, digestSide, digestSide, imaging.Lanczos)
	gray := imaging.Grayscale(small)
	soft := imaging.Blur(gray, digestBlurSigma)

	plane := make([]byte, digestSide*digestSide)
	step := 256 / digestLevels
	for y := 0; y < digestSide; y++ {
		for x := 0; x < digestSide; x++ {
			// Grayscale output has R == G == B.
			i := soft.PixOffset(x, y)
			plane[y*digestSide+x] = soft.Pix[i] / uint8(step)
		}
	}
	return sha256.Sum256(plane), nil
}
