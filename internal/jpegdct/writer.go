package jpegdct

import (
	"bytes"
	"encoding/binary"
)

type bitWriter struct {
	buf bytes.Buffer
	acc uint32
	n   int
}

func (w *bitWriter) write(bits uint32, n int) {
	w.acc = w.acc<<uint(n) | bits
	w.n += n
	for w.n >= 8 {
		w.n -= 8
		b := byte(w.acc >> uint(w.n))
		w.buf.WriteByte(b)
		if b == 0xFF {
			w.buf.WriteByte(0x00)
		}
	}
}

// flush pads the final partial byte with ones, per the baseline convention.
func (w *bitWriter) flush() {
	if w.n > 0 {
		pad := 8 - w.n
		w.write((1<<uint(pad))-1, pad)
	}
}

func bitSize(v int32) int {
	if v < 0 {
		v = -v
	}
	s := 0
	for v > 0 {
		s++
		v >>= 1
	}
	return s
}

// coefBits returns the s magnitude bits for v (negative values use the
// one's-complement form).
func coefBits(v int32, s int) uint32 {
	if v < 0 {
		v += (1 << uint(s)) - 1
	}
	return uint32(v)
}

func (w *bitWriter) writeCoef(t *encTable, symbol byte, v int32, s int) {
	w.write(uint32(t.code[symbol]), int(t.size[symbol]))
	if s > 0 {
		w.write(coefBits(v, s), s)
	}
}

func encodeBlock(w *bitWriter, dc, ac *encTable, pred *int32, block *[64]int32) error {
	diff := block[0] - *pred
	*pred = block[0]
	s := bitSize(diff)
	if s > 11 {
		return formatErr("DC difference %d out of range", diff)
	}
	w.writeCoef(dc, byte(s), diff, s)

	run := 0
	for k := 1; k <= 63; k++ {
		v := block[k]
		if v == 0 {
			run++
			continue
		}
		for run > 15 {
			w.write(uint32(ac.code[0xF0]), int(ac.size[0xF0]))
			run -= 16
		}
		s := bitSize(v)
		if s > 10 {
			return formatErr("AC coefficient %d out of range", v)
		}
		w.writeCoef(ac, byte(run<<4|s), v, s)
		run = 0
	}
	if run > 0 {
		w.write(uint32(ac.code[0x00]), int(ac.size[0x00]))
	}
	return nil
}

func writeSegment(out *bytes.Buffer, marker byte, payload []byte) {
	out.WriteByte(0xFF)
	out.WriteByte(marker)
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(len(payload)+2))
	out.Write(n[:])
	out.Write(payload)
}

// Encode serializes the coefficient image back into a baseline JPEG. The
// original quantization tables are preserved; Huffman tables are the fixed
// ones from tables.go, emitted in DHT so any decoder can follow. Restart
// intervals from the source are not reproduced.
func (img *Image) Encode() ([]byte, error) {
	if len(img.Comps) != 1 && len(img.Comps) != 3 {
		return nil, formatErr("encode supports 1 or 3 components, got %d", len(img.Comps))
	}
	mx, my := img.mcuCount()
	for ci := range img.Comps {
		want := mx * my * img.blocksPerMCU(ci)
		if len(img.Comps[ci].Blocks) != want {
			return nil, formatErr("component %d has %d blocks, want %d", ci, len(img.Comps[ci].Blocks), want)
		}
	}

	var out bytes.Buffer
	out.Write([]byte{0xFF, mSOI})
	writeSegment(&out, mAPP0, []byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})

	// DQT, one segment per table actually referenced.
	written := map[byte]bool{}
	for _, c := range img.Comps {
		if written[c.Tq] {
			continue
		}
		written[c.Tq] = true
		q, ok := img.Quant[c.Tq]
		if !ok {
			return nil, formatErr("missing quantization table %d", c.Tq)
		}
		seg := make([]byte, 65)
		seg[0] = c.Tq
		for i := 0; i < 64; i++ {
			seg[1+i] = byte(q[i])
		}
		writeSegment(&out, mDQT, seg)
	}

	// SOF0.
	sof := make([]byte, 6+3*len(img.Comps))
	sof[0] = 8
	binary.BigEndian.PutUint16(sof[1:], uint16(img.Height))
	binary.BigEndian.PutUint16(sof[3:], uint16(img.Width))
	sof[5] = byte(len(img.Comps))
	for i, c := range img.Comps {
		sof[6+3*i] = c.ID
		sof[7+3*i] = byte(c.H<<4 | c.V)
		sof[8+3*i] = c.Tq
	}
	writeSegment(&out, mSOF0, sof)

	// DHT: luminance pair always, chrominance pair for color.
	writeDHT(&out, 0, 0, dcLumCounts, dcLumValues)
	writeDHT(&out, 1, 0, acLumCounts, acLumValues)
	if len(img.Comps) == 3 {
		writeDHT(&out, 0, 1, dcChrCounts, dcChrValues)
		writeDHT(&out, 1, 1, acChrCounts, acChrValues)
	}

	// SOS.
	sos := make([]byte, 1+2*len(img.Comps)+3)
	sos[0] = byte(len(img.Comps))
	for i, c := range img.Comps {
		sos[1+2*i] = c.ID
		table := byte(0)
		if i > 0 {
			table = 0x11
		}
		sos[2+2*i] = table
	}
	sos[len(sos)-3] = 0
	sos[len(sos)-2] = 63
	sos[len(sos)-1] = 0
	writeSegment(&out, mSOS, sos)

	// Entropy-coded data, same MCU order the decoder used.
	w := &bitWriter{}
	preds := make([]int32, len(img.Comps))
	idx := make([]int, len(img.Comps))
	for m := 0; m < mx*my; m++ {
		for ci := range img.Comps {
			dc, ac := encDCLum, encACLum
			if ci > 0 {
				dc, ac = encDCChr, encACChr
			}
			for b := 0; b < img.blocksPerMCU(ci); b++ {
				if err := encodeBlock(w, dc, ac, &preds[ci], &img.Comps[ci].Blocks[idx[ci]]); err != nil {
					return nil, err
				}
				idx[ci]++
			}
		}
	}
	w.flush()
	out.Write(w.buf.Bytes())
	out.Write([]byte{0xFF, mEOI})
	return out.Bytes(), nil
}

func writeDHT(out *bytes.Buffer, tc, th byte, counts [16]byte, values []byte) {
	seg := make([]byte, 0, 17+len(values))
	seg = append(seg, tc<<4|th)
	seg = append(seg, counts[:]...)
	seg = append(seg, values...)
	writeSegment(out, mDHT, seg)
}
