package jpegdct

import (
	"encoding/binary"
)

// Marker bytes.
const (
	mSOI  = 0xD8
	mEOI  = 0xD9
	mSOF0 = 0xC0
	mSOF1 = 0xC1
	mSOF2 = 0xC2
	mDHT  = 0xC4
	mDQT  = 0xDB
	mDRI  = 0xDD
	mSOS  = 0xDA
	mRST0 = 0xD0
	mRST7 = 0xD7
	mAPP0 = 0xE0
	mAPP2 = 0xE2
	mCOM  = 0xFE
)

type huffTable struct {
	counts  [16]byte
	values  []byte
	minCode [17]int32
	maxCode [17]int32
	valPtr  [17]int32
}

func newHuffTable(counts [16]byte, values []byte) *huffTable {
	h := &huffTable{counts: counts, values: values}
	code := int32(0)
	k := int32(0)
	for l := 1; l <= 16; l++ {
		n := int32(counts[l-1])
		if n == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = k
			h.minCode[l] = code
			code += n
			k += n
			h.maxCode[l] = code - 1
		}
		code <<= 1
	}
	return h
}

// bitReader consumes the entropy-coded segment, unstuffing 0xFF00 and
// stopping cleanly at markers.
type bitReader struct {
	data []byte
	pos  int
	acc  uint32
	n    int
}

func (r *bitReader) bit() (int32, error) {
	if r.n == 0 {
		if r.pos >= len(r.data) {
			return 0, formatErr("entropy stream truncated")
		}
		b := r.data[r.pos]
		r.pos++
		if b == 0xFF {
			if r.pos >= len(r.data) {
				return 0, formatErr("entropy stream truncated at 0xFF")
			}
			next := r.data[r.pos]
			if next == 0x00 {
				r.pos++
			} else {
				// A real marker inside coefficient data: the stream lied
				// about its length.
				return 0, formatErr("unexpected marker 0x%02X in entropy stream", next)
			}
		}
		r.acc = uint32(b)
		r.n = 8
	}
	r.n--
	return int32(r.acc>>uint(r.n)) & 1, nil
}

func (r *bitReader) receive(s int) (int32, error) {
	v := int32(0)
	for i := 0; i < s; i++ {
		b, err := r.bit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | b
	}
	return v, nil
}

// align discards partial bits ahead of a restart marker.
func (r *bitReader) align() {
	r.n = 0
}

func (h *huffTable) decode(r *bitReader) (byte, error) {
	code := int32(0)
	for l := 1; l <= 16; l++ {
		b, err := r.bit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | b
		if h.maxCode[l] >= 0 && code <= h.maxCode[l] {
			return h.values[h.valPtr[l]+code-h.minCode[l]], nil
		}
	}
	return 0, formatErr("invalid Huffman code")
}

func extend(v int32, s int) int32 {
	if s == 0 {
		return 0
	}
	if v < 1<<(s-1) {
		return v - (1 << s) + 1
	}
	return v
}

// Decode parses a baseline JPEG into its quantized coefficient blocks.
func Decode(data []byte) (*Image, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != mSOI {
		return nil, formatErr("missing SOI")
	}

	img := &Image{Quant: make(map[byte][64]uint16)}
	dcTables := make(map[byte]*huffTable)
	acTables := make(map[byte]*huffTable)
	scanTd := make(map[byte]byte)
	scanTa := make(map[byte]byte)
	restartInterval := 0
	sawSOF := false

	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, formatErr("expected marker at offset %d", pos)
		}
		if pos+2 > len(data) {
			return nil, formatErr("truncated marker at offset %d", pos)
		}
		marker := data[pos+1]
		pos += 2
		switch {
		case marker == mEOI:
			return nil, formatErr("EOI before SOS")
		case marker >= mRST0 && marker <= mRST7, marker == 0xFF:
			continue
		}
		if pos+2 > len(data) {
			return nil, formatErr("truncated segment")
		}
		segLen := int(binary.BigEndian.Uint16(data[pos:])) - 2
		if segLen < 0 || pos+2+segLen > len(data) {
			return nil, formatErr("truncated segment")
		}
		seg := data[pos+2 : pos+2+segLen]
		pos += 2 + segLen

		switch marker {
		case mSOF0, mSOF1:
			if sawSOF {
				return nil, formatErr("multiple SOF markers")
			}
			sawSOF = true
			if err := parseSOF(img, seg); err != nil {
				return nil, err
			}
		case mSOF2:
			return nil, ErrUnsupported
		case mDQT:
			for len(seg) > 0 {
				pq, tq := seg[0]>>4, seg[0]&0x0F
				if pq != 0 {
					return nil, ErrUnsupported
				}
				if len(seg) < 65 {
					return nil, formatErr("truncated DQT")
				}
				var table [64]uint16
				for i := 0; i < 64; i++ {
					table[i] = uint16(seg[1+i])
				}
				img.Quant[tq] = table
				seg = seg[65:]
			}
		case mDHT:
			for len(seg) > 0 {
				if len(seg) < 17 {
					return nil, formatErr("truncated DHT")
				}
				tc, th := seg[0]>>4, seg[0]&0x0F
				var counts [16]byte
				total := 0
				for i := 0; i < 16; i++ {
					counts[i] = seg[1+i]
					total += int(counts[i])
				}
				if len(seg) < 17+total {
					return nil, formatErr("truncated DHT values")
				}
				values := append([]byte(nil), seg[17:17+total]...)
				if tc == 0 {
					dcTables[th] = newHuffTable(counts, values)
				} else {
					acTables[th] = newHuffTable(counts, values)
				}
				seg = seg[17+total:]
			}
		case mDRI:
			if len(seg) < 2 {
				return nil, formatErr("truncated DRI")
			}
			restartInterval = int(binary.BigEndian.Uint16(seg))
		case mSOS:
			if !sawSOF {
				return nil, formatErr("SOS before SOF")
			}
			if err := parseSOSHeader(img, seg, scanTd, scanTa); err != nil {
				return nil, err
			}
			if err := decodeScan(img, data[pos:], dcTables, acTables, scanTd, scanTa, restartInterval); err != nil {
				return nil, err
			}
			return img, nil
		default:
			// APPn, COM and anything else informational.
		}
	}
	return nil, formatErr("no SOS marker")
}

func parseSOF(img *Image, seg []byte) error {
	if len(seg) < 6 {
		return formatErr("truncated SOF")
	}
	if seg[0] != 8 {
		return ErrUnsupported
	}
	img.Height = int(binary.BigEndian.Uint16(seg[1:]))
	img.Width = int(binary.BigEndian.Uint16(seg[3:]))
	nComp := int(seg[5])
	if nComp != 1 && nComp != 3 {
		return ErrUnsupported
	}
	if len(seg) < 6+3*nComp {
		return formatErr("truncated SOF components")
	}
	for i := 0; i < nComp; i++ {
		c := Component{
			ID: seg[6+3*i],
			H:  int(seg[7+3*i] >> 4),
			V:  int(seg[7+3*i] & 0x0F),
			Tq: seg[8+3*i],
		}
		if c.H < 1 || c.H > 2 || c.V < 1 || c.V > 2 {
			return ErrUnsupported
		}
		img.Comps = append(img.Comps, c)
	}
	return nil
}

func parseSOSHeader(img *Image, seg []byte, scanTd, scanTa map[byte]byte) error {
	if len(seg) < 1 {
		return formatErr("truncated SOS")
	}
	nComp := int(seg[0])
	if nComp != len(img.Comps) {
		// Multi-scan baseline files are rare enough not to bother with.
		return ErrUnsupported
	}
	if len(seg) < 1+2*nComp+3 {
		return formatErr("truncated SOS header")
	}
	for i := 0; i < nComp; i++ {
		cs := seg[1+2*i]
		scanTd[cs] = seg[2+2*i] >> 4
		scanTa[cs] = seg[2+2*i] & 0x0F
	}
	return nil
}

func (img *Image) sampling() (hMax, vMax int) {
	for _, c := range img.Comps {
		if c.H > hMax {
			hMax = c.H
		}
		if c.V > vMax {
			vMax = c.V
		}
	}
	return
}

// mcuCount returns the MCU grid. For a single-component image each MCU is
// one block.
func (img *Image) mcuCount() (mx, my int) {
	hMax, vMax := img.sampling()
	if len(img.Comps) == 1 {
		return (img.Width + 7) / 8, (img.Height + 7) / 8
	}
	mx = (img.Width + 8*hMax - 1) / (8 * hMax)
	my = (img.Height + 8*vMax - 1) / (8 * vMax)
	return
}

// blocksPerMCU is 1 for a non-interleaved single component, H*V otherwise.
func (img *Image) blocksPerMCU(ci int) int {
	if len(img.Comps) == 1 {
		return 1
	}
	return img.Comps[ci].H * img.Comps[ci].V
}

func decodeScan(img *Image, data []byte, dcTables, acTables map[byte]*huffTable, scanTd, scanTa map[byte]byte, restartInterval int) error {
	br := &bitReader{data: data}
	preds := make([]int32, len(img.Comps))
	mx, my := img.mcuCount()

	mcu := 0
	for m := 0; m < mx*my; m++ {
		if restartInterval > 0 && mcu == restartInterval {
			if err := consumeRestart(br); err != nil {
				return err
			}
			for i := range preds {
				preds[i] = 0
			}
			mcu = 0
		}
		for ci := range img.Comps {
			c := &img.Comps[ci]
			dc := dcTables[scanTd[c.ID]]
			ac := acTables[scanTa[c.ID]]
			if dc == nil || ac == nil {
				return formatErr("missing Huffman table for component %d", c.ID)
			}
			for b := 0; b < img.blocksPerMCU(ci); b++ {
				var block [64]int32
				if err := decodeBlock(br, dc, ac, &preds[ci], &block); err != nil {
					return err
				}
				c.Blocks = append(c.Blocks, block)
			}
		}
		mcu++
	}
	return nil
}

func consumeRestart(br *bitReader) error {
	br.align()
	if br.pos+2 > len(br.data) {
		return formatErr("missing restart marker")
	}
	if br.data[br.pos] != 0xFF || br.data[br.pos+1] < mRST0 || br.data[br.pos+1] > mRST7 {
		return formatErr("expected restart marker at offset %d", br.pos)
	}
	br.pos += 2
	return nil
}

func decodeBlock(br *bitReader, dc, ac *huffTable, pred *int32, block *[64]int32) error {
	s, err := dc.decode(br)
	if err != nil {
		return err
	}
	if s > 11 {
		return formatErr("DC size %d out of range", s)
	}
	var diff int32
	if s > 0 {
		v, err := br.receive(int(s))
		if err != nil {
			return err
		}
		diff = extend(v, int(s))
	}
	*pred += diff
	block[0] = *pred

	for k := 1; k <= 63; {
		rs, err := ac.decode(br)
		if err != nil {
			return err
		}
		run, size := int(rs>>4), int(rs&0x0F)
		if size == 0 {
			if run == 15 {
				k += 16
				continue
			}
			break // EOB
		}
		k += run
		if k > 63 {
			return formatErr("AC run overflows block")
		}
		v, err := br.receive(size)
		if err != nil {
			return err
		}
		block[k] = extend(v, size)
		k++
	}
	return nil
}
