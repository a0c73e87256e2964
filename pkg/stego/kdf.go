package stego

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDFPrimitive tags which construction produced a derivation. Fallback
// output is never interchangeable with the primary one: the two primitives
// use distinct domain labels, so the same inputs yield unrelated keys.
type KDFPrimitive uint8

const (
	KDFArgon2id KDFPrimitive = 1
	KDFPBKDF2   KDFPrimitive = 2
)

// DerivedKey is the one-way output of the KDF. The first 32 bytes key the
// payload cipher, the second 32 seed the position sampler. Computed fresh on
// every encode and decode, never persisted.
type DerivedKey struct {
	Key       [32]byte
	PlanSeed  [32]byte
	Primitive KDFPrimitive
}

const (
	labelArgon2id = "stegasoo/v1/argon2id"
	labelPBKDF2   = "stegasoo/v1/pbkdf2"
	kdfOutputLen  = 64
)

// Argon2id parameters target roughly a second per derivation on commodity
// hardware with a working set a GPU farm cannot cheaply replicate. The
// pbkdf2Iters fallback is sized to comparable wall-clock cost.
var kdfParams = struct {
	argonMemoryKiB uint32
	argonPasses    uint32
	argonLanes     uint8
	pbkdf2Iters    int
}{
	argonMemoryKiB: 256 * 1024,
	argonPasses:    4,
	argonLanes:     4,
	pbkdf2Iters:    2_000_000,
}

// DeriveKey combines the reference digest, passphrase, second factor (PIN
// digits or RSA challenge signature), and optional channel key into a
// symmetric key via Argon2id. Deterministic: same inputs, same salt, same
// key. Malformed input is rejected before the memory-hard work starts.
func DeriveKey(digest ReferenceDigest, passphrase string, secondFactor, channelKey, salt []byte) (DerivedKey, error) {
	secret, err := kdfSecret(digest, passphrase, secondFactor, channelKey, salt)
	if err != nil {
		return DerivedKey{}, err
	}
	raw := argon2.IDKey(append([]byte(labelArgon2id), secret...), salt,
		kdfParams.argonPasses, kdfParams.argonMemoryKiB, kdfParams.argonLanes, kdfOutputLen)
	return splitDerivation(raw, KDFArgon2id), nil
}

// DeriveKeyFallback is the iterated-HMAC construction for environments where
// the memory-hard primitive is unavailable. Its output is tagged so callers
// can refuse to treat it as equivalent to an Argon2id derivation.
func DeriveKeyFallback(digest ReferenceDigest, passphrase string, secondFactor, channelKey, salt []byte) (DerivedKey, error) {
	secret, err := kdfSecret(digest, passphrase, secondFactor, channelKey, salt)
	if err != nil {
		return DerivedKey{}, err
	}
	raw := pbkdf2.Key(append([]byte(labelPBKDF2), secret...), salt,
		kdfParams.pbkdf2Iters, kdfOutputLen, sha256.New)
	return splitDerivation(raw, KDFPBKDF2), nil
}

func splitDerivation(raw []byte, p KDFPrimitive) DerivedKey {
	var k DerivedKey
	copy(k.Key[:], raw[:32])
	copy(k.PlanSeed[:], raw[32:64])
	k.Primitive = p
	return k
}

// kdfSecret frames every input with a length prefix so no concatenation of
// fields can collide with another.
func kdfSecret(digest ReferenceDigest, passphrase string, secondFactor, channelKey, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrValidation)
	}
	if len(secondFactor) == 0 {
		return nil, fmt.Errorf("%w: missing second factor", ErrValidation)
	}
	if len(salt) != saltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes", ErrValidation, saltSize)
	}
	fields := [][]byte{digest[:], []byte(passphrase), secondFactor, channelKey}
	var secret []byte
	for _, f := range fields {
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(f)))
		secret = append(secret, n[:]...)
		secret = append(secret, f...)
	}
	return secret, nil
}
