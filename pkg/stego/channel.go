package stego

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
)

// A channel key is a deployment-wide shared secret mixed into key
// derivation: messages encoded under one channel key cannot be decoded
// under another, even with correct passphrase and PIN. The size is fixed at
// 256 bits. Keys display as 13 hyphenated groups of 4 base32 characters.
const channelKeySize = 32

var channelEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewChannelKey draws a fresh 256-bit channel key from the system CSPRNG.
func NewChannelKey() ([]byte, error) {
	key := make([]byte, channelKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// FormatChannelKey renders a channel key for humans to copy around.
func FormatChannelKey(key []byte) (string, error) {
	if len(key) != channelKeySize {
		return "", fmt.Errorf("%w: channel key must be %d bytes", ErrValidation, channelKeySize)
	}
	s := channelEncoding.EncodeToString(key)
	var groups []string
	for len(s) > 4 {
		groups = append(groups, s[:4])
		s = s[4:]
	}
	groups = append(groups, s)
	return strings.Join(groups, "-"), nil
}

// ParseChannelKey accepts the hyphenated form back, tolerating case and
// stray whitespace.
func ParseChannelKey(s string) ([]byte, error) {
	clean := strings.ToUpper(strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s))
	key, err := channelEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: channel key is not valid base32", ErrValidation)
	}
	if len(key) != channelKeySize {
		return nil, fmt.Errorf("%w: channel key decodes to %d bytes, want %d", ErrValidation, len(key), channelKeySize)
	}
	return key, nil
}
