package stego

import (
	"github.com/stegasoo/stegasoo/internal/jpegdct"
)

// Direct-coefficient DCT strategy, JPEG carriers only. Bits are parity-coded
// into the file's own quantized coefficients, so the carrier's quantization
// survives untouched and no pixel decode/re-encode happens. Eligible slots
// are non-DC coefficients with magnitude >= 2: flipping the parity of a
// near-zero coefficient would usually round it to zero and drop the bit.
//
// The parity adjustment never moves a magnitude below 2 and never touches
// ineligible coefficients, so the eligible-slot enumeration is identical at
// embed and extract time. Framing (repetition prefix, FEC body) matches the
// recomputed-block strategy; the decoder tells the two apart by trying the
// native coefficients first on JPEG input.

type coefRef struct {
	comp, block, idx int
}

func directSlots(img *jpegdct.Image) []coefRef {
	var slots []coefRef
	for ci := range img.Comps {
		for bi := range img.Comps[ci].Blocks {
			for k := 1; k < 64; k++ {
				v := img.Comps[ci].Blocks[bi][k]
				if v >= 2 || v <= -2 {
					slots = append(slots, coefRef{ci, bi, k})
				}
			}
		}
	}
	return slots
}

func coefParity(v int32) uint8 {
	if v < 0 {
		v = -v
	}
	return uint8(v & 1)
}

// setCoefParity adjusts by one step toward zero when possible, away from
// zero when that would leave the eligible range. Sign is always preserved: a
// positive odd value needing even parity is decremented, never negated.
func setCoefParity(v int32, bit uint8) int32 {
	neg := v < 0
	abs := v
	if neg {
		abs = -v
	}
	if uint8(abs&1) != bit {
		if abs-1 >= 2 {
			abs--
		} else {
			abs++
		}
	}
	if neg {
		return -abs
	}
	return abs
}

func directEmbed(img *jpegdct.Image, frame []byte, key DerivedKey) error {
	slots := directSlots(img)
	prefix, payloadRest := frame[:prefixSize], frame[prefixSize:]
	body, err := fecEncode(payloadRest)
	if err != nil {
		return err
	}

	write := func(slot int, bit uint8) {
		r := slots[slot]
		block := &img.Comps[r.comp].Blocks[r.block]
		block[r.idx] = setCoefParity(block[r.idx], bit)
	}
	for i := 0; i < prefixBits; i++ {
		bit := getBit(prefix, i)
		for r := 0; r < dctPrefixRep; r++ {
			write(i*dctPrefixRep+r, bit)
		}
	}
	plan, err := Sample(key.PlanSeed, len(slots)-dctPrefixSlots, len(body)*8)
	if err != nil {
		return err
	}
	for i, slot := range plan {
		write(dctPrefixSlots+slot, getBit(body, i))
	}
	return nil
}

func directReadPrefix(img *jpegdct.Image) (Header, []byte, []coefRef, error) {
	slots := directSlots(img)
	if len(slots) < dctPrefixSlots {
		return Header{}, nil, nil, ErrNoData
	}
	read := func(slot int) uint8 {
		r := slots[slot]
		return coefParity(img.Comps[r.comp].Blocks[r.block][r.idx])
	}
	prefix := make([]byte, prefixSize)
	for i := 0; i < prefixBits; i++ {
		votes := int(read(i*dctPrefixRep)) + int(read(i*dctPrefixRep+1)) + int(read(i*dctPrefixRep+2))
		if votes >= 2 {
			setBit(prefix, i, 1)
		}
	}
	hdr, err := ParseHeader(prefix)
	if err != nil {
		return Header{}, nil, nil, err
	}
	return hdr, prefix[headerSize:], slots, nil
}

func directExtractBody(img *jpegdct.Image, slots []coefRef, key DerivedKey, hdr Header) ([]byte, error) {
	dataLen := int(hdr.PayloadLen) - saltSize
	streamLen := fecEncodedLen(dataLen)
	plan, err := Sample(key.PlanSeed, len(slots)-dctPrefixSlots, streamLen*8)
	if err != nil {
		return nil, err
	}
	stream := make([]byte, streamLen)
	for i, slot := range plan {
		r := slots[dctPrefixSlots+slot]
		setBit(stream, i, coefParity(img.Comps[r.comp].Blocks[r.block][r.idx]))
	}
	return fecDecode(stream, dataLen)
}
