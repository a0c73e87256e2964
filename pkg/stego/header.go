package stego

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Wire format, version 1:
//
//	magic    4 bytes  "SGSO"
//	version  1 byte
//	mode     1 byte   0x01 = LSB, 0x02 = DCT
//	length   4 bytes  big-endian size of the encrypted payload
//
// The encrypted payload is salt(16) || nonce(12) || tag(16) || ciphertext.

var magicBytes = [4]byte{'S', 'G', 'S', 'O'}

const (
	FormatVersion1 = 0x01

	headerSize = 10

	// minPayloadSize is salt + nonce + tag with an empty ciphertext.
	minPayloadSize = saltSize + nonceSize + tagSize
)

// Mode identifies the embedding back-end that produced a stego image.
type Mode uint8

const (
	ModeLSB Mode = 0x01
	ModeDCT Mode = 0x02
)

func (m Mode) String() string {
	switch m {
	case ModeLSB:
		return "lsb"
	case ModeDCT:
		return "dct"
	default:
		return fmt.Sprintf("mode(0x%02x)", uint8(m))
	}
}

// Header is the fixed-size frame wrapped around the encrypted payload.
type Header struct {
	Version    uint8
	Mode       Mode
	PayloadLen uint32
}

// BuildHeader frames an encrypted payload for the given mode.
func BuildHeader(mode Mode, payloadLen int) []byte {
	out := make([]byte, headerSize)
	copy(out[0:4], magicBytes[:])
	out[4] = FormatVersion1
	out[5] = uint8(mode)
	binary.BigEndian.PutUint32(out[6:10], uint32(payloadLen))
	return out
}

// ParseHeader validates the fixed header. Validation is strict and ordered so
// that foreign or corrupt input fails before any cryptographic work: magic
// first, then version, then mode, then length sanity.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a header", ErrInvalidHeader, len(data))
	}
	if !bytes.Equal(data[0:4], magicBytes[:]) {
		return Header{}, ErrInvalidMagic
	}
	h := Header{Version: data[4], Mode: Mode(data[5])}
	// One parser per version. Unknown versions are refused outright rather
	// than parsed best-effort.
	switch h.Version {
	case FormatVersion1:
	default:
		return Header{}, fmt.Errorf("%w: unknown version 0x%02x", ErrInvalidHeader, h.Version)
	}
	switch h.Mode {
	case ModeLSB, ModeDCT:
	default:
		return Header{}, fmt.Errorf("%w: unknown mode 0x%02x", ErrModeMismatch, uint8(h.Mode))
	}
	h.PayloadLen = binary.BigEndian.Uint32(data[6:10])
	if h.PayloadLen < minPayloadSize {
		return Header{}, fmt.Errorf("%w: payload length %d below minimum %d", ErrInvalidHeader, h.PayloadLen, minPayloadSize)
	}
	return h, nil
}
