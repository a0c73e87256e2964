package stego

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	saltSize  = 16
	nonceSize = 12
	tagSize   = 16
)

// EncryptedPayload is the decomposed form of the wire payload
// salt || nonce || tag || ciphertext. Salt and nonce are generated fresh per
// encode and are not secret; they travel inside the stego image.
type EncryptedPayload struct {
	Salt       []byte
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

// Bytes serializes the payload in wire order.
func (p EncryptedPayload) Bytes() []byte {
	out := make([]byte, 0, len(p.Salt)+len(p.Nonce)+len(p.Tag)+len(p.Ciphertext))
	out = append(out, p.Salt...)
	out = append(out, p.Nonce...)
	out = append(out, p.Tag...)
	return append(out, p.Ciphertext...)
}

func parseEncryptedPayload(data []byte) (EncryptedPayload, error) {
	if len(data) < minPayloadSize {
		return EncryptedPayload{}, fmt.Errorf("%w: payload truncated", ErrInvalidHeader)
	}
	return EncryptedPayload{
		Salt:       data[:saltSize],
		Nonce:      data[saltSize : saltSize+nonceSize],
		Tag:        data[saltSize+nonceSize : saltSize+nonceSize+tagSize],
		Ciphertext: data[saltSize+nonceSize+tagSize:],
	}, nil
}

// NewSalt draws a fresh KDF salt from the system CSPRNG.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Encrypt seals plaintext under the derived key with AES-256-GCM. The salt is
// the one the key was derived from; it rides along so the decoder can re-run
// the KDF. Nonce reuse across messages is structurally impossible because
// every message derives its own key from a fresh salt.
func Encrypt(plaintext []byte, key DerivedKey, salt []byte) (EncryptedPayload, error) {
	if len(salt) != saltSize {
		return EncryptedPayload{}, fmt.Errorf("%w: salt must be %d bytes", ErrValidation, saltSize)
	}
	block, err := aes.NewCipher(key.Key[:])
	if err != nil {
		return EncryptedPayload{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedPayload{}, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedPayload{}, err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	// GCM appends the tag; the wire format carries it before the ciphertext.
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return EncryptedPayload{
		Salt:       append([]byte(nil), salt...),
		Nonce:      nonce,
		Tag:        append([]byte(nil), tag...),
		Ciphertext: append([]byte(nil), ct...),
	}, nil
}

// Decrypt opens an encrypted payload. A wrong key and a flipped ciphertext
// byte produce the exact same ErrDecryption; the tag check inside GCM is the
// only signal and it does not leak which byte differed.
func Decrypt(payload EncryptedPayload, key DerivedKey) ([]byte, error) {
	block, err := aes.NewCipher(key.Key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(payload.Ciphertext)+tagSize)
	sealed = append(sealed, payload.Ciphertext...)
	sealed = append(sealed, payload.Tag...)
	plaintext, err := gcm.Open(nil, payload.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}
