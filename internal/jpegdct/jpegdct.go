// Package jpegdct reads and writes the quantized DCT coefficients of
// baseline JPEG files without a pixel decode/re-encode cycle. It exists for
// the direct-coefficient embedding strategy: coefficients are decoded from
// the entropy stream, individual values are adjusted, and the file is
// re-encoded around the modified blocks while preserving the original
// quantization tables.
//
// Only baseline sequential Huffman JPEGs (SOF0/SOF1, 8-bit, single scan)
// are supported; progressive and arithmetic files return ErrUnsupported and
// the caller falls back to the recomputed-block strategy.
package jpegdct

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupported = errors.New("jpegdct: unsupported JPEG variant")
	ErrFormat      = errors.New("jpegdct: malformed JPEG")
)

// Component holds one color component's coefficient blocks in entropy-stream
// order (MCU-interleaved for multi-component images). Coefficients are in
// zigzag order, still quantized, with DC prediction already resolved.
type Component struct {
	ID     byte
	H, V   int
	Tq     byte
	Blocks [][64]int32
}

// Image is the coefficient-domain representation of a baseline JPEG.
type Image struct {
	Width, Height int
	Quant         map[byte][64]uint16
	Comps         []Component
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}
