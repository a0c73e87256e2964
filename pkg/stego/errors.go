package stego

import (
	"errors"
	"fmt"
)

// Error taxonomy for the codec. Everything the package returns wraps one of
// these sentinels, so callers classify failures with errors.Is rather than
// string matching.
var (
	// ErrValidation marks malformed credentials or arguments, rejected
	// before any expensive work is attempted.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidMagic means the bytes carry no recognizable stego header.
	ErrInvalidMagic = errors.New("invalid magic bytes")

	// ErrInvalidHeader means the magic matched but the header is not
	// readable (unknown version, nonsensical length).
	ErrInvalidHeader = errors.New("invalid header")

	// ErrModeMismatch means the header names a mode this decoder does not
	// recognize, or the caller forced a mode the image was not encoded with.
	ErrModeMismatch = errors.New("embedding mode mismatch")

	// ErrDecryption is returned for both wrong credentials and tampered
	// ciphertext. The two cases are deliberately indistinguishable.
	ErrDecryption = errors.New("decryption failed")

	// ErrReedSolomon means the damage exceeded the error correction bound.
	// Data was present but is unrecoverable; credentials were never tested.
	ErrReedSolomon = errors.New("error correction bound exceeded")

	// ErrNoData means no embedded data was detected under any framing.
	ErrNoData = errors.New("no embedded data found")
)

// CapacityError reports a payload that does not fit the carrier. The carrier
// is untouched when this is returned.
// Needed and Available are payload bytes at the Embed/Capacity level and
// slots when reported by the position sampler.
type CapacityError struct {
	Needed    int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload too large: need %d, carrier holds %d", e.Needed, e.Available)
}
