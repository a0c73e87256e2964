package stego

import (
	"errors"
	"testing"
)

func TestSampleBasicProperties(t *testing.T) {
	var seed [32]byte
	seed[0] = 0xAB

	plan, err := Sample(seed, 10_000, 2_500)
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	if len(plan) != 2_500 {
		t.Fatalf("Plan has %d positions, want 2500", len(plan))
	}
	seen := make(map[int]bool, len(plan))
	for _, p := range plan {
		if p < 0 || p >= 10_000 {
			t.Fatalf("Position %d out of range [0, 10000)", p)
		}
		if seen[p] {
			t.Fatalf("Position %d sampled twice", p)
		}
		seen[p] = true
	}
}

func TestSampleDeterministic(t *testing.T) {
	var seed [32]byte
	seed[31] = 7

	a, err := Sample(seed, 5_000, 1_000)
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	b, err := Sample(seed, 5_000, 1_000)
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Plans diverge at index %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSampleSeedSensitivity(t *testing.T) {
	var s1, s2 [32]byte
	s2[0] = 1

	a, _ := Sample(s1, 5_000, 1_000)
	b, _ := Sample(s2, 5_000, 1_000)
	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	// Two random injections into [0, 5000) agree at a given index with
	// probability 1/5000; a thousand draws should almost never collide often.
	if same > 10 {
		t.Errorf("Plans from different seeds agree at %d of %d positions", same, len(a))
	}
}

func TestSampleFullPermutation(t *testing.T) {
	var seed [32]byte
	plan, err := Sample(seed, 64, 64)
	if err != nil {
		t.Fatalf("Sampling failed: %v", err)
	}
	seen := make(map[int]bool)
	for _, p := range plan {
		seen[p] = true
	}
	if len(seen) != 64 {
		t.Errorf("Full draw covered %d of 64 positions", len(seen))
	}
}

func TestSampleOverdraw(t *testing.T) {
	var seed [32]byte
	_, err := Sample(seed, 100, 101)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Overdraw: got %v, want CapacityError", err)
	}
	if capErr.Needed != 101 || capErr.Available != 100 {
		t.Errorf("CapacityError{%d, %d}, want {101, 100}", capErr.Needed, capErr.Available)
	}
}
