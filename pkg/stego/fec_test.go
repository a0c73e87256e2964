package stego

import (
	"bytes"
	"errors"
	"testing"
)

func TestFECRoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 4, 5, 100, 1000} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 31)
		}
		stream, err := fecEncode(data)
		if err != nil {
			t.Fatalf("Encoding %d bytes failed: %v", n, err)
		}
		if len(stream) != fecEncodedLen(n) {
			t.Fatalf("Encoded %d bytes into %d, want %d", n, len(stream), fecEncodedLen(n))
		}
		out, err := fecDecode(stream, n)
		if err != nil {
			t.Fatalf("Decoding %d bytes failed: %v", n, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("Round trip of %d bytes corrupted the data", n)
		}
	}
}

func TestFECRepairsDamagedShards(t *testing.T) {
	data := []byte("forward error correction keeps the payload alive")
	stream, err := fecEncode(data)
	if err != nil {
		t.Fatalf("Encoding failed: %v", err)
	}
	size := fecShardSize(len(data))

	// Trash one data shard and one parity shard completely.
	for i := 0; i < size; i++ {
		stream[1*size+i] ^= 0xFF
		stream[4*size+i] ^= 0x55
	}

	out, err := fecDecode(stream, len(data))
	if err != nil {
		t.Fatalf("Decoding with two damaged shards failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Repaired data does not match the original")
	}
}

func TestFECBeyondCorrectionBound(t *testing.T) {
	data := []byte("this will not survive")
	stream, err := fecEncode(data)
	if err != nil {
		t.Fatalf("Encoding failed: %v", err)
	}
	size := fecShardSize(len(data))
	stream[0*size] ^= 1
	stream[1*size] ^= 1
	stream[2*size] ^= 1

	if _, err := fecDecode(stream, len(data)); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("Three damaged shards: got %v, want ErrReedSolomon", err)
	}
}

func TestFECLengthMismatch(t *testing.T) {
	stream, err := fecEncode([]byte("abcd"))
	if err != nil {
		t.Fatalf("Encoding failed: %v", err)
	}
	if _, err := fecDecode(stream[:len(stream)-1], 4); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("Truncated stream: got %v, want ErrReedSolomon", err)
	}
}

func TestFECSystematicLayout(t *testing.T) {
	// The data shards must be a plain copy of the input so the frame stays
	// readable without a decode pass.
	data := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	stream, err := fecEncode(data)
	if err != nil {
		t.Fatalf("Encoding failed: %v", err)
	}
	if !bytes.Equal(stream[:len(data)], data) {
		t.Error("Encoded stream does not start with the data itself")
	}
}
