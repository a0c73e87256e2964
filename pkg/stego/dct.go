package stego

import (
	"image"
	"math"
	"sort"
)

// Recomputed-block DCT engine. The blue channel is carved into 8x8 blocks,
// each block forward-transformed, and bits are parity-encoded into a fixed
// pool of 16 mid-frequency coefficients per block. The pool and the
// quantization step are format constants of version 1: they trade capacity
// against robustness, and changing either breaks decode compatibility.
//
// Pool positions sit on zigzag diagonals 3 to 6, excluding the DC term and
// the high frequencies that quantize to zero under JPEG re-encoding.
var dctPool = [16][2]int{
	{0, 3}, {1, 2}, {2, 1}, {3, 0},
	{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0},
	{0, 5}, {1, 4}, {2, 3}, {3, 2}, {4, 1}, {5, 0},
	{2, 4},
}

const (
	dctPoolSize  = len(dctPool)
	dctQuantStep = 24.0

	// Coefficient rounding noise survives the pixel round trip, so the
	// prefix is repetition-coded: every bit occupies 3 consecutive slots
	// and reads back by majority vote.
	dctPrefixRep   = 3
	dctPrefixSlots = prefixBits * dctPrefixRep
)

func dctBlocks(width, height int) (int, int) {
	return width / blockSize, height / blockSize
}

func dctSlotCount(width, height int) int {
	bw, bh := dctBlocks(width, height)
	return bw * bh * dctPoolSize
}

// dctCapacity reports usable payload bytes (ciphertext size) for the
// recomputed-block strategy, accounting for the repetition prefix and the
// FEC expansion of the body. Negative means the prefix does not fit.
func dctCapacity(width, height int) int {
	return dctCapacityFromSlots(dctSlotCount(width, height))
}

func dctCapacityFromSlots(slots int) int {
	bodyBytes := (slots - dctPrefixSlots) / 8
	// Invert fecEncodedLen: total = 6s + 24 with 4 data bytes per shard.
	shard := (bodyBytes - fecTotalShards*fecCRCSize) / fecTotalShards
	return fecDataShards*shard - (nonceSize + tagSize)
}

type coefWrite struct {
	pool int
	bit  uint8
}

func embedParity(c float64, bit uint8) float64 {
	q := int(math.Round(c / dctQuantStep))
	if uint8((q%2+2)%2) != bit {
		// Shift one step toward the coefficient's own side of the rounded
		// value so the adjustment stays minimal.
		if c < float64(q)*dctQuantStep {
			q--
		} else {
			q++
		}
	}
	return float64(q) * dctQuantStep
}

func readParity(c float64) uint8 {
	q := int(math.Round(c / dctQuantStep))
	return uint8((q%2 + 2) % 2)
}

func loadBlueBlock(img *image.NRGBA, bx, by int) [blockSize][blockSize]float64 {
	var block [blockSize][blockSize]float64
	for y := 0; y < blockSize; y++ {
		row := img.PixOffset(bx*blockSize, by*blockSize+y)
		for x := 0; x < blockSize; x++ {
			block[y][x] = float64(img.Pix[row+x*4+2])
		}
	}
	return block
}

func storeBlueBlock(img *image.NRGBA, bx, by int, block [blockSize][blockSize]float64) {
	for y := 0; y < blockSize; y++ {
		row := img.PixOffset(bx*blockSize, by*blockSize+y)
		for x := 0; x < blockSize; x++ {
			img.Pix[row+x*4+2] = uint8(math.Max(0, math.Min(255, math.Round(block[y][x]))))
		}
	}
}

// applyBlockWrites transforms each touched block exactly once, adjusts every
// targeted coefficient, and inverse-transforms. Blocks are processed in
// ascending order purely so progress reporting is monotonic; the result does
// not depend on order.
func applyBlockWrites(img *image.NRGBA, writes map[int][]coefWrite, progress func(done, total int)) {
	bw, _ := dctBlocks(img.Rect.Dx(), img.Rect.Dy())
	blocks := make([]int, 0, len(writes))
	for b := range writes {
		blocks = append(blocks, b)
	}
	sort.Ints(blocks)
	for i, b := range blocks {
		bx, by := b%bw, b/bw
		coeffs := dct2d(loadBlueBlock(img, bx, by))
		for _, w := range writes[b] {
			u, v := dctPool[w.pool][0], dctPool[w.pool][1]
			coeffs[u][v] = embedParity(coeffs[u][v], w.bit)
		}
		storeBlueBlock(img, bx, by, idct2d(coeffs))
		if progress != nil && (i%64 == 63 || i == len(blocks)-1) {
			progress(i+1, len(blocks))
		}
	}
}

// readSlots returns the parity bit of each requested slot, computing the
// DCT of every involved block once.
func readDCTSlots(img *image.NRGBA, slots []int) []uint8 {
	bw, _ := dctBlocks(img.Rect.Dx(), img.Rect.Dy())
	byBlock := make(map[int][]int)
	for _, s := range slots {
		byBlock[s/dctPoolSize] = append(byBlock[s/dctPoolSize], s)
	}
	bits := make(map[int]uint8, len(slots))
	for b, bs := range byBlock {
		coeffs := dct2d(loadBlueBlock(img, b%bw, b/bw))
		for _, s := range bs {
			u, v := dctPool[s%dctPoolSize][0], dctPool[s%dctPoolSize][1]
			bits[s] = readParity(coeffs[u][v])
		}
	}
	out := make([]uint8, len(slots))
	for i, s := range slots {
		out[i] = bits[s]
	}
	return out
}

func dctEmbed(img *image.NRGBA, frame []byte, key DerivedKey, progress func(done, total int)) error {
	prefix, payloadRest := frame[:prefixSize], frame[prefixSize:]
	body, err := fecEncode(payloadRest)
	if err != nil {
		return err
	}

	writes := make(map[int][]coefWrite)
	add := func(slot int, bit uint8) {
		writes[slot/dctPoolSize] = append(writes[slot/dctPoolSize], coefWrite{pool: slot % dctPoolSize, bit: bit})
	}
	for i := 0; i < prefixBits; i++ {
		bit := getBit(prefix, i)
		for r := 0; r < dctPrefixRep; r++ {
			add(i*dctPrefixRep+r, bit)
		}
	}

	slots := dctSlotCount(img.Rect.Dx(), img.Rect.Dy())
	plan, err := Sample(key.PlanSeed, slots-dctPrefixSlots, len(body)*8)
	if err != nil {
		return err
	}
	for i, slot := range plan {
		add(dctPrefixSlots+slot, getBit(body, i))
	}

	applyBlockWrites(img, writes, progress)
	return nil
}

// dctReadPrefix is the cheap probe for the recomputed-block framing: 39
// blocks of DCT work, no key derivation.
func dctReadPrefix(img *image.NRGBA) (Header, []byte, error) {
	if dctSlotCount(img.Rect.Dx(), img.Rect.Dy()) < dctPrefixSlots {
		return Header{}, nil, ErrNoData
	}
	slots := make([]int, dctPrefixSlots)
	for i := range slots {
		slots[i] = i
	}
	raw := readDCTSlots(img, slots)

	prefix := make([]byte, prefixSize)
	for i := 0; i < prefixBits; i++ {
		votes := int(raw[i*dctPrefixRep]) + int(raw[i*dctPrefixRep+1]) + int(raw[i*dctPrefixRep+2])
		if votes >= 2 {
			setBit(prefix, i, 1)
		}
	}
	hdr, err := ParseHeader(prefix)
	if err != nil {
		return Header{}, nil, err
	}
	return hdr, prefix[headerSize:], nil
}

func dctExtractBody(img *image.NRGBA, key DerivedKey, hdr Header) ([]byte, error) {
	dataLen := int(hdr.PayloadLen) - saltSize
	streamLen := fecEncodedLen(dataLen)
	slots := dctSlotCount(img.Rect.Dx(), img.Rect.Dy())
	plan, err := Sample(key.PlanSeed, slots-dctPrefixSlots, streamLen*8)
	if err != nil {
		return nil, err
	}
	for i := range plan {
		plan[i] += dctPrefixSlots
	}
	raw := readDCTSlots(img, plan)
	stream := make([]byte, streamLen)
	for i, bit := range raw {
		setBit(stream, i, bit)
	}
	return fecDecode(stream, dataLen)
}
