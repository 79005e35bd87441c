package fst

import "github.com/cybroslabs/go-fst/store"

// writeLabel encodes label using the width strategy selected by typ.
func writeLabel(bs *store.ByteStore, typ InputType, label int) error {
	switch typ {
	case InputTypeByte1:
		if label < 0 || label > 0xff {
			return newFormatError("label %d out of range for 1-byte input type", label)
		}
		bs.WriteByte(byte(label))
	case InputTypeByte2:
		if label < 0 || label > 0xffff {
			return newFormatError("label %d out of range for 2-byte input type", label)
		}
		// Written as two plain bytes rather than via WriteShort: a reverse
		// reader (used for every unpacked node) replays an arc's bytes in
		// the order they were written, but rejects whole-value fixed-width
		// reads outright, so the label must be read back byte by byte too.
		bs.WriteByte(byte(label >> 8))
		bs.WriteByte(byte(label))
	case InputTypeByte4:
		if label < 0 {
			return newFormatError("label %d must be non-negative for vint input type", label)
		}
		bs.WriteVint(label)
	default:
		return newFormatError("unknown input type %d", typ)
	}
	return nil
}

// readLabel decodes a label written by writeLabel.
func readLabel(br store.BytesReader, typ InputType) (int, error) {
	switch typ {
	case InputTypeByte1:
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		return int(b), nil
	case InputTypeByte2:
		hi, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		lo, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		return int(hi)<<8 | int(lo), nil
	case InputTypeByte4:
		return br.ReadVint()
	default:
		return 0, newFormatError("unknown input type %d", typ)
	}
}
