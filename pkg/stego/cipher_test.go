package stego

import (
	"bytes"
	"errors"
	"testing"
)

func testKey(b byte) DerivedKey {
	var k DerivedKey
	for i := range k.Key {
		k.Key[i] = b
	}
	k.Primitive = KDFArgon2id
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(0x42)
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("Failed to generate salt: %v", err)
	}
	plaintext := []byte("attack at dawn")

	ep, err := Encrypt(plaintext, key, salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if len(ep.Salt) != saltSize || len(ep.Nonce) != nonceSize || len(ep.Tag) != tagSize {
		t.Fatalf("Bad component sizes: salt=%d nonce=%d tag=%d", len(ep.Salt), len(ep.Nonce), len(ep.Tag))
	}
	if len(ep.Ciphertext) != len(plaintext) {
		t.Errorf("Ciphertext is %d bytes, want %d", len(ep.Ciphertext), len(plaintext))
	}

	decrypted, err := Decrypt(ep, key)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypted %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	salt, _ := NewSalt()
	ep, err := Encrypt([]byte("secret"), testKey(0x01), salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if _, err := Decrypt(ep, testKey(0x02)); !errors.Is(err, ErrDecryption) {
		t.Errorf("Wrong key: got %v, want ErrDecryption", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	key := testKey(0x01)
	salt, _ := NewSalt()
	ep, err := Encrypt([]byte("secret"), key, salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	ep.Ciphertext[0] ^= 1
	if _, err := Decrypt(ep, key); !errors.Is(err, ErrDecryption) {
		t.Errorf("Tampered ciphertext: got %v, want ErrDecryption", err)
	}
}

func TestEncryptedPayloadWireOrder(t *testing.T) {
	key := testKey(0x07)
	salt, _ := NewSalt()
	ep, err := Encrypt([]byte("0123456789"), key, salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	blob := ep.Bytes()
	if len(blob) != minPayloadSize+10 {
		t.Fatalf("Serialized payload is %d bytes, want %d", len(blob), minPayloadSize+10)
	}
	parsed, err := parseEncryptedPayload(blob)
	if err != nil {
		t.Fatalf("Failed to parse serialized payload: %v", err)
	}
	if !bytes.Equal(parsed.Salt, ep.Salt) || !bytes.Equal(parsed.Nonce, ep.Nonce) ||
		!bytes.Equal(parsed.Tag, ep.Tag) || !bytes.Equal(parsed.Ciphertext, ep.Ciphertext) {
		t.Error("Parsed payload components do not match the originals")
	}

	if _, err := parseEncryptedPayload(blob[:minPayloadSize-1]); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Truncated payload: got %v, want ErrInvalidHeader", err)
	}
}

func TestEncryptFreshNonce(t *testing.T) {
	key := testKey(0x03)
	salt, _ := NewSalt()
	a, err := Encrypt([]byte("x"), key, salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	b, err := Encrypt([]byte("x"), key, salt)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if bytes.Equal(a.Nonce, b.Nonce) {
		t.Error("Two encryptions reused a nonce")
	}
}
