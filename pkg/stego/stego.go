package stego

import (
	"errors"
	"fmt"
	"image"

	"github.com/stegasoo/stegasoo/internal/jpegdct"
)

// Credentials are the secrets mixed into key derivation alongside the
// reference digest. Passphrase is required; at least one of PIN or
// RSASignature must be present; ChannelKey scopes messages to a deployment
// and may be empty.
type Credentials struct {
	Passphrase   string
	PIN          string
	RSASignature []byte
	ChannelKey   []byte
}

func (c Credentials) secondFactor() ([]byte, error) {
	if c.PIN != "" {
		for _, r := range c.PIN {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("%w: PIN must be numeric", ErrValidation)
			}
		}
		return []byte(c.PIN), nil
	}
	if len(c.RSASignature) > 0 {
		return c.RSASignature, nil
	}
	return nil, fmt.Errorf("%w: a PIN or RSA signature is required", ErrValidation)
}

func (c Credentials) derive(digest ReferenceDigest, salt []byte, primitive KDFPrimitive) (DerivedKey, error) {
	second, err := c.secondFactor()
	if err != nil {
		return DerivedKey{}, err
	}
	if primitive == KDFPBKDF2 {
		return DeriveKeyFallback(digest, c.Passphrase, second, c.ChannelKey, salt)
	}
	return DeriveKey(digest, c.Passphrase, second, c.ChannelKey, salt)
}

// DCTStrategy selects how DCT-mode bits reach the carrier.
type DCTStrategy uint8

const (
	// StrategyAuto uses the carrier's native coefficients for baseline
	// JPEGs and recomputed blocks for everything else.
	StrategyAuto DCTStrategy = iota
	StrategyRecompute
	StrategyDirect
)

// EmbedOptions tune an embed call. The zero value picks a mode from the
// carrier format, Argon2id derivation, automatic DCT strategy, and PNG
// output.
type EmbedOptions struct {
	Mode     Mode
	Strategy DCTStrategy
	// JPEGQuality, when positive, makes the recomputed-block DCT engine
	// emit JPEG at that quality instead of PNG. FEC absorbs the resulting
	// coefficient noise up to its correction bound.
	JPEGQuality int
	// KDF selects the derivation primitive; zero means Argon2id.
	KDF KDFPrimitive
	// Progress, if set, is called at coarse intervals during DCT block
	// work. It must not block; it never influences the output.
	Progress func(done, total int)
}

// ExtractOptions tune an extract call.
type ExtractOptions struct {
	// Mode forces an interpretation instead of auto-detection.
	Mode Mode
	// KDF must match the primitive used at embed time; zero means Argon2id.
	KDF KDFPrimitive
}

// Embed hides a payload in a carrier image and returns the bytes of a new
// stego image. The carrier is never modified. Capacity is verified before
// any key derivation or mutation.
func Embed(carrier, payload []byte, digest ReferenceDigest, creds Credentials, opts EmbedOptions) ([]byte, error) {
	if _, err := creds.secondFactor(); err != nil {
		return nil, err
	}
	mode := opts.Mode
	if mode == 0 {
		if isJPEG(carrier) {
			mode = ModeDCT
		} else {
			mode = ModeLSB
		}
	}

	img, _, err := decodeImage(carrier)
	if err != nil {
		return nil, err
	}
	if o := exifOrientation(carrier); o != 1 {
		img = bakeOrientation(img, o)
	}

	// The direct strategy's capacity depends on the carrier's own
	// coefficients, so resolve the strategy before the capacity check.
	var native *jpegdct.Image
	var nativeSlots []coefRef
	strategy := opts.Strategy
	if mode == ModeDCT && strategy != StrategyRecompute {
		native, err = jpegdct.Decode(carrier)
		switch {
		case err == nil:
			nativeSlots = directSlots(native)
		case strategy == StrategyDirect:
			return nil, fmt.Errorf("%w: direct strategy needs a baseline JPEG carrier: %v", ErrValidation, err)
		default:
			native = nil
		}
	}

	var usable int
	switch {
	case mode == ModeLSB:
		usable = lsbCapacity(img.Bounds().Dx(), img.Bounds().Dy())
	case native != nil:
		usable = dctCapacityFromSlots(len(nativeSlots))
	default:
		usable = dctCapacity(img.Bounds().Dx(), img.Bounds().Dy())
	}
	if len(payload) > usable {
		return nil, &CapacityError{Needed: len(payload), Available: max(usable, 0)}
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	key, err := creds.derive(digest, salt, opts.KDF)
	if err != nil {
		return nil, err
	}
	ep, err := Encrypt(payload, key, salt)
	if err != nil {
		return nil, err
	}
	blob := ep.Bytes()
	frame := append(BuildHeader(mode, len(blob)), blob...)

	switch {
	case mode == ModeLSB:
		stego := copyImage(img)
		if err := lsbEmbed(stego, frame, key); err != nil {
			return nil, err
		}
		return encodePNG(stego)
	case native != nil:
		if err := directEmbed(native, frame, key); err != nil {
			return nil, err
		}
		return native.Encode()
	default:
		stego := copyImage(img)
		if err := dctEmbed(stego, frame, key, opts.Progress); err != nil {
			return nil, err
		}
		if opts.JPEGQuality > 0 {
			return encodeJPEG(stego, opts.JPEGQuality)
		}
		return encodePNG(stego)
	}
}

// Extract recovers the payload from a stego image. Framing detection is
// cheap and runs before the expensive key derivation; once a header is
// found, failures propagate without retry because retrying with the same
// inputs cannot succeed.
func Extract(stego []byte, digest ReferenceDigest, creds Credentials, opts ExtractOptions) ([]byte, error) {
	if _, err := creds.secondFactor(); err != nil {
		return nil, err
	}
	probe, err := detect(stego, opts.Mode)
	if err != nil {
		return nil, err
	}
	key, err := creds.derive(digest, probe.salt, opts.KDF)
	if err != nil {
		return nil, err
	}
	body, err := probe.readBody(key)
	if err != nil {
		return nil, err
	}
	ep, err := parseEncryptedPayload(append(append([]byte(nil), probe.salt...), body...))
	if err != nil {
		return nil, err
	}
	return Decrypt(ep, key)
}

// DetectMode inspects a stego image and reports which engine produced it,
// at the cost of a header read and no cryptography.
func DetectMode(stego []byte) (Mode, error) {
	probe, err := detect(stego, 0)
	if err != nil {
		return 0, err
	}
	return probe.hdr.Mode, nil
}

// Capacity reports the usable payload bytes a carrier offers in a mode. For
// DCT mode the figure holds under every strategy, so a payload sized from it
// embeds whether Embed works on native or recomputed coefficients.
func Capacity(carrier []byte, mode Mode) (int, error) {
	img, _, err := decodeImage(carrier)
	if err != nil {
		return 0, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	switch mode {
	case ModeLSB:
		return max(lsbCapacity(w, h), 0), nil
	case ModeDCT:
		usable := dctCapacity(w, h)
		if isJPEG(carrier) {
			if native, err := jpegdct.Decode(carrier); err == nil {
				usable = min(usable, dctCapacityFromSlots(len(directSlots(native))))
			}
		}
		return max(usable, 0), nil
	default:
		return 0, fmt.Errorf("%w: unknown mode 0x%02x", ErrModeMismatch, uint8(mode))
	}
}

// probeResult carries everything detection learned, so extraction never
// re-parses the image.
type probeResult struct {
	hdr      Header
	salt     []byte
	readBody func(DerivedKey) ([]byte, error)
}

// detect tries each candidate framing in order of likelihood for the
// container, then retries the raster framings at the three other
// orientations. forced narrows the candidates to one mode.
func detect(stego []byte, forced Mode) (*probeResult, error) {
	var firstErr error
	record := func(err error) {
		if firstErr == nil || errors.Is(firstErr, ErrInvalidMagic) && !errors.Is(err, ErrInvalidMagic) {
			firstErr = err
		}
	}

	if isJPEG(stego) && forced != ModeLSB {
		if native, err := jpegdct.Decode(stego); err == nil {
			hdr, salt, slots, err := directReadPrefix(native)
			if err == nil {
				if hdr.Mode != ModeDCT {
					return nil, fmt.Errorf("%w: native coefficients carry mode %s", ErrModeMismatch, hdr.Mode)
				}
				return &probeResult{hdr: hdr, salt: salt, readBody: func(key DerivedKey) ([]byte, error) {
					return directExtractBody(native, slots, key, hdr)
				}}, nil
			}
			record(err)
		}
	}

	img, _, err := decodeImage(stego)
	if err != nil {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, err
	}
	if o := exifOrientation(stego); o != 1 {
		img = bakeOrientation(img, o)
	}

	candidates := []image.Image{img}
	candidates = append(candidates, orientationRetries(img)...)
	for _, cand := range candidates {
		nrgba := copyImage(cand)
		if forced != ModeDCT {
			if hdr, salt, err := lsbReadPrefix(nrgba); err == nil {
				if hdr.Mode != ModeLSB {
					record(fmt.Errorf("%w: LSB framing carries mode %s", ErrModeMismatch, hdr.Mode))
				} else {
					return &probeResult{hdr: hdr, salt: salt, readBody: func(key DerivedKey) ([]byte, error) {
						return lsbExtractBody(nrgba, key, hdr)
					}}, nil
				}
			} else {
				record(err)
			}
		}
		if forced != ModeLSB {
			if hdr, salt, err := dctReadPrefix(nrgba); err == nil {
				if hdr.Mode != ModeDCT {
					record(fmt.Errorf("%w: DCT framing carries mode %s", ErrModeMismatch, hdr.Mode))
				} else {
					return &probeResult{hdr: hdr, salt: salt, readBody: func(key DerivedKey) ([]byte, error) {
						return dctExtractBody(nrgba, key, hdr)
					}}, nil
				}
			} else {
				record(err)
			}
		}
	}

	if firstErr == nil {
		firstErr = ErrNoData
	}
	return nil, firstErr
}
