package stego

// Info is the header metadata readable without credentials.
type Info struct {
	Mode        Mode
	Version     uint8
	PayloadSize int // encrypted payload bytes, including salt/nonce/tag
}

// Inspect reads the stego header from an image, trying the same candidate
// framings as extraction but stopping before any key derivation.
func Inspect(stego []byte) (*Info, error) {
	probe, err := detect(stego, 0)
	if err != nil {
		return nil, err
	}
	return &Info{
		Mode:        probe.hdr.Mode,
		Version:     probe.hdr.Version,
		PayloadSize: int(probe.hdr.PayloadLen),
	}, nil
}
