package stego

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Payload is what the cipher layer sees after unpacking: either an inline
// message (empty Filename) or a file with its original name.
type Payload struct {
	Filename string
	Data     []byte
}

// Packed payload structure (this is the plaintext handed to the cipher):
//
//	flags    1 byte   bit 0 = zstd-compressed, bit 1 = file mode
//	origLen  4 bytes  big-endian length of the uncompressed data
//	nameLen  2 bytes  big-endian, file mode only
//	name     nameLen bytes, file mode only
//	data     rest, compressed when bit 0 is set
const (
	payloadFlagCompressed = 1 << 0
	payloadFlagFile       = 1 << 1
)

// PackPayload serializes a payload, compressing the data when that actually
// saves space. The flag byte makes the result self-describing, so the codec
// never needs to be told whether compression was applied.
func PackPayload(p Payload, compress bool) ([]byte, error) {
	if len(p.Filename) > 0xFFFF {
		return nil, fmt.Errorf("%w: filename longer than 65535 bytes", ErrValidation)
	}
	data := p.Data
	var flags byte
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		packed := enc.EncodeAll(p.Data, nil)
		enc.Close()
		if len(packed) < len(p.Data) {
			data = packed
			flags |= payloadFlagCompressed
		}
	}

	out := make([]byte, 5, 5+2+len(p.Filename)+len(data))
	binary.BigEndian.PutUint32(out[1:5], uint32(len(p.Data)))
	if p.Filename != "" {
		flags |= payloadFlagFile
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(p.Filename)))
		out = append(out, n[:]...)
		out = append(out, p.Filename...)
	}
	out[0] = flags
	return append(out, data...), nil
}

// UnpackPayload reverses PackPayload.
func UnpackPayload(packed []byte) (Payload, error) {
	if len(packed) < 5 {
		return Payload{}, fmt.Errorf("%w: packed payload truncated", ErrValidation)
	}
	flags := packed[0]
	origLen := binary.BigEndian.Uint32(packed[1:5])
	rest := packed[5:]

	var p Payload
	if flags&payloadFlagFile != 0 {
		if len(rest) < 2 {
			return Payload{}, fmt.Errorf("%w: packed payload truncated", ErrValidation)
		}
		nameLen := int(binary.BigEndian.Uint16(rest[:2]))
		if len(rest) < 2+nameLen {
			return Payload{}, fmt.Errorf("%w: packed payload truncated", ErrValidation)
		}
		p.Filename = string(rest[2 : 2+nameLen])
		rest = rest[2+nameLen:]
	}

	if flags&payloadFlagCompressed != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return Payload{}, err
		}
		defer dec.Close()
		data, err := dec.DecodeAll(rest, nil)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: decompression: %v", ErrValidation, err)
		}
		rest = data
	}
	if uint32(len(rest)) != origLen {
		return Payload{}, fmt.Errorf("%w: payload length %d does not match recorded %d", ErrValidation, len(rest), origLen)
	}
	p.Data = rest
	return p, nil
}
