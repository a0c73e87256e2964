package stego

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// The RSA second factor: the holder of the private key signs a fixed
// challenge and the signature bytes feed the KDF. Signing must be
// deterministic or the derived key would change between encode and decode,
// so PKCS#1 v1.5 is used rather than PSS.
const rsaChallenge = "stegasoo/v1/second-factor-challenge"

// GenerateRSAKeys writes private.pem and public.pem into outDir.
func GenerateRSAKeys(bits int, outDir string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return err
	}

	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", outDir)
	}

	// 0600 so only the owner can read the private key.
	privFile, err := os.OpenFile(filepath.Join(outDir, "private.pem"), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer privFile.Close()

	privBlock := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}
	if err := pem.Encode(privFile, privBlock); err != nil {
		return err
	}

	pubFile, err := os.Create(filepath.Join(outDir, "public.pem"))
	if err != nil {
		return err
	}
	defer pubFile.Close()

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return err
	}
	return pem.Encode(pubFile, &pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
}

// SignChallenge produces the second-factor bytes from a PEM private key
// file. Deterministic: the same key always yields the same signature.
func SignChallenge(privKeyPath string) ([]byte, error) {
	privKeyBytes, err := os.ReadFile(privKeyPath)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(privKeyBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block in private key file", ErrValidation)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hashed := sha256.Sum256([]byte(rsaChallenge))
	return rsa.SignPKCS1v15(nil, priv, crypto.SHA256, hashed[:])
}

// VerifyChallenge checks second-factor bytes against a PEM public key file,
// letting tooling validate a signature without attempting a decode.
func VerifyChallenge(pubKeyPath string, signature []byte) error {
	pubKeyBytes, err := os.ReadFile(pubKeyPath)
	if err != nil {
		return err
	}
	block, _ := pem.Decode(pubKeyBytes)
	if block == nil {
		return fmt.Errorf("%w: no PEM block in public key file", ErrValidation)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: key is not RSA", ErrValidation)
	}
	hashed := sha256.Sum256([]byte(rsaChallenge))
	return rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, hashed[:], signature)
}
