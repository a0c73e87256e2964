package stego

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestChannelKeyRoundTrip(t *testing.T) {
	key, err := NewChannelKey()
	if err != nil {
		t.Fatalf("Failed to generate channel key: %v", err)
	}
	if len(key) != channelKeySize {
		t.Fatalf("Key is %d bytes, want %d", len(key), channelKeySize)
	}

	formatted, err := FormatChannelKey(key)
	if err != nil {
		t.Fatalf("Failed to format channel key: %v", err)
	}
	groups := strings.Split(formatted, "-")
	if len(groups) != 13 {
		t.Errorf("Formatted key has %d groups, want 13", len(groups))
	}

	parsed, err := ParseChannelKey(formatted)
	if err != nil {
		t.Fatalf("Failed to parse formatted key: %v", err)
	}
	if !bytes.Equal(parsed, key) {
		t.Error("Parsed key does not match the original")
	}
}

func TestParseChannelKeyTolerant(t *testing.T) {
	key, _ := NewChannelKey()
	formatted, _ := FormatChannelKey(key)

	sloppy := strings.ToLower(strings.ReplaceAll(formatted, "-", " "))
	parsed, err := ParseChannelKey(sloppy)
	if err != nil {
		t.Fatalf("Failed to parse lowercase spaced key: %v", err)
	}
	if !bytes.Equal(parsed, key) {
		t.Error("Tolerant parse changed the key")
	}
}

func TestParseChannelKeyRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-key", "AAAA-BBBB"} {
		if _, err := ParseChannelKey(s); !errors.Is(err, ErrValidation) {
			t.Errorf("Parsing %q: got %v, want ErrValidation", s, err)
		}
	}
}

func TestFormatChannelKeyRejectsWrongSize(t *testing.T) {
	if _, err := FormatChannelKey(make([]byte, 16)); !errors.Is(err, ErrValidation) {
		t.Errorf("16-byte key: got %v, want ErrValidation", err)
	}
}
