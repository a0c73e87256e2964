package stego

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// The position sampler turns the sampler half of the derived key into a
// collision-free ordering of embedding slots. The construction is pinned as
// part of format version 1: a ChaCha20 keystream (32-byte seed as key, zero
// nonce) drives a partial Fisher-Yates shuffle, with unbiased bounded draws
// by 64-bit rejection sampling. A different stream cipher, seeding
// convention, or rejection rule would produce a different plan and break
// decode compatibility, so none of this is configurable.

type chachaStream struct {
	cipher *chacha20.Cipher
	buf    [512]byte
	off    int
}

func newChachaStream(seed [32]byte) *chachaStream {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// Key and nonce sizes are fixed at compile time.
		panic(err)
	}
	s := &chachaStream{cipher: c}
	s.refill()
	return s
}

func (s *chachaStream) refill() {
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	s.off = 0
}

func (s *chachaStream) uint64() uint64 {
	if s.off+8 > len(s.buf) {
		s.refill()
	}
	v := binary.LittleEndian.Uint64(s.buf[s.off:])
	s.off += 8
	return v
}

// uintn returns an unbiased draw in [0, n).
func (s *chachaStream) uintn(n uint64) uint64 {
	limit := (^uint64(0)) - (^uint64(0))%n
	for {
		if v := s.uint64(); v < limit {
			return v % n
		}
	}
}

// Sample returns the first `needed` entries of a seeded permutation of
// [0, slotCount). It is deterministic for a given seed, never repeats an
// index, and keeps memory proportional to `needed` rather than `slotCount`,
// which matters for carriers with tens of millions of slots. The swap map
// holds only the displaced entries of the virtual Fisher-Yates array.
func Sample(seed [32]byte, slotCount, needed int) ([]int, error) {
	if needed > slotCount {
		return nil, &CapacityError{Needed: needed, Available: slotCount}
	}
	rng := newChachaStream(seed)
	swapped := make(map[int]int, needed)
	out := make([]int, needed)
	for i := 0; i < needed; i++ {
		j := i + int(rng.uintn(uint64(slotCount-i)))
		vi, ok := swapped[i]
		if !ok {
			vi = i
		}
		vj, ok := swapped[j]
		if !ok {
			vj = j
		}
		out[i] = vj
		swapped[j] = vi
	}
	return out, nil
}
