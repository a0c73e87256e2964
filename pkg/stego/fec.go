package stego

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/reedsolomon"
)

// Forward error correction for the DCT engines. Reed-Solomon here is an
// erasure code: it can rebuild missing shards but cannot locate errors on
// its own. Each shard therefore carries a CRC-32; a shard whose checksum
// fails is dropped and reconstructed as an erasure. The correction bound is
// fecParityShards damaged shards, after which fecDecode reports
// ErrReedSolomon rather than returning wrong data.
const (
	fecDataShards   = 4
	fecParityShards = 2
	fecTotalShards  = fecDataShards + fecParityShards
	fecCRCSize      = 4
)

// fecEncodedLen is the exact size fecEncode produces for n data bytes.
// Both sides compute it from the header's payload length, so no size field
// travels with the shards.
func fecEncodedLen(n int) int {
	return fecTotalShards*fecShardSize(n) + fecTotalShards*fecCRCSize
}

func fecShardSize(n int) int {
	s := (n + fecDataShards - 1) / fecDataShards
	if s == 0 {
		s = 1
	}
	return s
}

// fecEncode lays out the stream as
// dataShards || parityShards || crc32(shard0..shard5). The data shards are a
// zero-padded copy of the input in order, so the encoding is systematic and
// the frame header stays readable at a fixed offset without decoding.
func fecEncode(data []byte) ([]byte, error) {
	enc, err := reedsolomon.New(fecDataShards, fecParityShards)
	if err != nil {
		return nil, err
	}
	size := fecShardSize(len(data))
	padded := make([]byte, fecDataShards*size)
	copy(padded, data)

	shards := make([][]byte, fecTotalShards)
	for i := 0; i < fecDataShards; i++ {
		shards[i] = padded[i*size : (i+1)*size]
	}
	for i := fecDataShards; i < fecTotalShards; i++ {
		shards[i] = make([]byte, size)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, err
	}

	out := make([]byte, 0, fecEncodedLen(len(data)))
	for _, shard := range shards {
		out = append(out, shard...)
	}
	for _, shard := range shards {
		var crc [fecCRCSize]byte
		binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(shard))
		out = append(out, crc[:]...)
	}
	return out, nil
}

// fecDecode recovers the original dataLen bytes, silently repairing up to
// fecParityShards damaged shards.
func fecDecode(stream []byte, dataLen int) ([]byte, error) {
	size := fecShardSize(dataLen)
	if len(stream) != fecEncodedLen(dataLen) {
		return nil, fmt.Errorf("%w: stream length %d does not match %d data bytes", ErrReedSolomon, len(stream), dataLen)
	}

	shards := make([][]byte, fecTotalShards)
	damaged := 0
	crcs := stream[fecTotalShards*size:]
	for i := 0; i < fecTotalShards; i++ {
		shard := stream[i*size : (i+1)*size]
		want := binary.BigEndian.Uint32(crcs[i*fecCRCSize:])
		if crc32.ChecksumIEEE(shard) == want {
			shards[i] = shard
		} else {
			damaged++
		}
	}

	if damaged > 0 {
		if damaged > fecParityShards {
			return nil, fmt.Errorf("%w: %d of %d shards damaged, can repair at most %d",
				ErrReedSolomon, damaged, fecTotalShards, fecParityShards)
		}
		enc, err := reedsolomon.New(fecDataShards, fecParityShards)
		if err != nil {
			return nil, err
		}
		if err := enc.Reconstruct(shards); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReedSolomon, err)
		}
	}

	out := make([]byte, 0, fecDataShards*size)
	for i := 0; i < fecDataShards; i++ {
		out = append(out, shards[i]...)
	}
	return out[:dataLen], nil
}
