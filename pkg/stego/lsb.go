package stego

import (
	"image"
)

// The LSB engine substitutes the least-significant bit of R, G and B at
// sampled pixel positions: 3 usable bits per pixel, alpha untouched. The
// 26-byte prefix (header + KDF salt) occupies the first slots in linear
// order so a decoder can recognize the format and recover the salt before
// any key material exists; the body lands on the key-seeded plan over the
// remaining slots.
const (
	lsbChannels = 3
	prefixSize  = headerSize + saltSize
	prefixBits  = prefixSize * 8
)

func lsbSlotCount(img *image.NRGBA) int {
	return img.Rect.Dx() * img.Rect.Dy() * lsbChannels
}

// Slot i addresses channel i%3 of pixel i/3 in row-major order.
func lsbWriteSlot(img *image.NRGBA, slot int, bit uint8) {
	i := (slot/lsbChannels)*4 + slot%lsbChannels
	img.Pix[i] = img.Pix[i]&^1 | bit
}

func lsbReadSlot(img *image.NRGBA, slot int) uint8 {
	return img.Pix[(slot/lsbChannels)*4+slot%lsbChannels] & 1
}

// lsbCapacity reports the usable payload bytes (ciphertext size) a carrier
// offers in LSB mode. Negative means even the fixed prefix does not fit.
func lsbCapacity(width, height int) int {
	slots := width * height * lsbChannels
	bodyBytes := (slots - prefixBits) / 8
	return bodyBytes - (nonceSize + tagSize)
}

// lsbEmbed writes a framed blob into img. The caller has already checked
// capacity; the plan cannot run out of slots here.
func lsbEmbed(img *image.NRGBA, frame []byte, key DerivedKey) error {
	prefix, body := frame[:prefixSize], frame[prefixSize:]
	for i := 0; i < prefixBits; i++ {
		lsbWriteSlot(img, i, getBit(prefix, i))
	}
	plan, err := Sample(key.PlanSeed, lsbSlotCount(img)-prefixBits, len(body)*8)
	if err != nil {
		return err
	}
	for i, slot := range plan {
		lsbWriteSlot(img, prefixBits+slot, getBit(body, i))
	}
	return nil
}

// lsbReadPrefix reads the fixed-position header and salt. This is the cheap
// probe the dispatcher runs before any key derivation.
func lsbReadPrefix(img *image.NRGBA) (Header, []byte, error) {
	if lsbSlotCount(img) < prefixBits {
		return Header{}, nil, ErrNoData
	}
	prefix := make([]byte, prefixSize)
	for i := 0; i < prefixBits; i++ {
		setBit(prefix, i, lsbReadSlot(img, i))
	}
	hdr, err := ParseHeader(prefix)
	if err != nil {
		return Header{}, nil, err
	}
	return hdr, prefix[headerSize:], nil
}

// lsbExtractBody reads the nonce/tag/ciphertext region back off the plan.
func lsbExtractBody(img *image.NRGBA, key DerivedKey, hdr Header) ([]byte, error) {
	bodyLen := int(hdr.PayloadLen) - saltSize
	plan, err := Sample(key.PlanSeed, lsbSlotCount(img)-prefixBits, bodyLen*8)
	if err != nil {
		return nil, err
	}
	body := make([]byte, bodyLen)
	for i, slot := range plan {
		setBit(body, i, lsbReadSlot(img, prefixBits+slot))
	}
	return body, nil
}
