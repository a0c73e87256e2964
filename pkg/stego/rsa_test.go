package stego

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRSAKeyGeneration(t *testing.T) {
	tmpDir := t.TempDir()
	if err := GenerateRSAKeys(2048, tmpDir); err != nil {
		t.Fatalf("Failed to generate RSA keys: %v", err)
	}

	privPath := filepath.Join(tmpDir, "private.pem")
	pubPath := filepath.Join(tmpDir, "public.pem")
	info, err := os.Stat(privPath)
	if err != nil {
		t.Fatalf("Private key file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Private key permissions %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(pubPath); err != nil {
		t.Fatalf("Public key file missing: %v", err)
	}
}

func TestSignChallengeDeterministic(t *testing.T) {
	tmpDir := t.TempDir()
	if err := GenerateRSAKeys(2048, tmpDir); err != nil {
		t.Fatalf("Failed to generate RSA keys: %v", err)
	}
	privPath := filepath.Join(tmpDir, "private.pem")

	a, err := SignChallenge(privPath)
	if err != nil {
		t.Fatalf("Signing failed: %v", err)
	}
	b, err := SignChallenge(privPath)
	if err != nil {
		t.Fatalf("Signing failed: %v", err)
	}
	// Key derivation depends on signing the challenge identically every time.
	if !bytes.Equal(a, b) {
		t.Fatal("Two signatures over the fixed challenge differ")
	}

	if err := VerifyChallenge(filepath.Join(tmpDir, "public.pem"), a); err != nil {
		t.Errorf("Signature failed verification: %v", err)
	}
	a[0] ^= 1
	if err := VerifyChallenge(filepath.Join(tmpDir, "public.pem"), a); err == nil {
		t.Error("Corrupted signature passed verification")
	}
}

func TestRSASecondFactorRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	if err := GenerateRSAKeys(2048, tmpDir); err != nil {
		t.Fatalf("Failed to generate RSA keys: %v", err)
	}
	sig, err := SignChallenge(filepath.Join(tmpDir, "private.pem"))
	if err != nil {
		t.Fatalf("Signing failed: %v", err)
	}

	carrier := pngCarrier(t, 64, 64)
	creds := Credentials{Passphrase: "wave after wave", RSASignature: sig}
	out, err := Embed(carrier, []byte("keyed"), testDigest, creds, EmbedOptions{})
	if err != nil {
		t.Fatalf("Embedding failed: %v", err)
	}
	extracted, err := Extract(out, testDigest, creds, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extraction failed: %v", err)
	}
	if string(extracted) != "keyed" {
		t.Errorf("Recovered %q, want \"keyed\"", extracted)
	}
}
