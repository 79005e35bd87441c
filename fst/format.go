package fst

import (
	"io"

	"github.com/cybroslabs/go-fst/packedints"
	"github.com/cybroslabs/go-fst/store"
)

// Save serializes f to w using the on-disk format of spec.md §6: a codec
// header, packed flag, optional empty output, input-type tag, the
// packed dense-id table (packed FSTs only), the four counters, and
// finally the raw arc-byte buffer.
func (f *FST[T]) Save(w io.Writer) error {
	header, err := store.New(store.MinBlockBits)
	if err != nil {
		return err
	}
	header.WriteBytes([]byte(formatName))
	header.WriteInt(int32(currentVersion))

	if f.packed {
		header.WriteByte(1)
	} else {
		header.WriteByte(0)
	}

	if f.hasEmptyOutput {
		header.WriteByte(1)
		emptyBuf, err := store.New(store.MinBlockBits)
		if err != nil {
			return err
		}
		f.outputs.WriteFinalOutput(f.emptyOutput, emptyBuf)
		raw := drainBytes(emptyBuf)
		if !f.packed {
			reverseInPlace(raw)
		}
		header.WriteVint(len(raw))
		header.WriteBytes(raw)
	} else {
		header.WriteByte(0)
	}

	header.WriteByte(byte(f.inputType))

	if f.packed {
		f.nodeRefToAddress.WriteTo(header)
	}

	header.WriteVlong(f.startNode)
	header.WriteVlong(f.nodeCount)
	header.WriteVlong(f.arcCount)
	header.WriteVlong(f.arcWithOutputCount)

	totalArcBytes := f.bytes.GetPosition()
	header.WriteVlong(totalArcBytes)

	if err := header.WriteTo(w); err != nil {
		return err
	}
	return f.bytes.WriteTo(w)
}

// Load deserializes an FST previously written by Save.
func Load[T any](r io.Reader, outputs Outputs[T]) (*FST[T], error) {
	hr := newStreamByteReader(r)

	nameBytes := make([]byte, len(formatName))
	for i := range nameBytes {
		b, err := hr.ReadByte()
		if err != nil {
			return nil, err
		}
		nameBytes[i] = b
	}
	if string(nameBytes) != formatName {
		return nil, newFormatError("unrecognized codec header %q", nameBytes)
	}
	version, err := hr.ReadInt()
	if err != nil {
		return nil, err
	}
	if int(version) < VersionPacked || int(version) > VersionVintTarget {
		return nil, newFormatError("unsupported format version %d", version)
	}

	packedByte, err := hr.ReadByte()
	if err != nil {
		return nil, err
	}
	packed := packedByte != 0

	hasEmptyByte, err := hr.ReadByte()
	if err != nil {
		return nil, err
	}

	f := &FST[T]{outputs: outputs, packed: packed, version: int(version)}

	if hasEmptyByte != 0 {
		n, err := hr.ReadVint()
		if err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		for i := range raw {
			b, err := hr.ReadByte()
			if err != nil {
				return nil, err
			}
			raw[i] = b
		}
		if !packed {
			reverseInPlace(raw)
		}
		scratch, err := store.New(store.MinBlockBits)
		if err != nil {
			return nil, err
		}
		scratch.WriteBytes(raw)
		out, err := outputs.ReadFinalOutput(scratch.GetForwardReader())
		if err != nil {
			return nil, err
		}
		f.emptyOutput = out
		f.hasEmptyOutput = true
	}

	inputTypeByte, err := hr.ReadByte()
	if err != nil {
		return nil, err
	}
	if inputTypeByte > byte(InputTypeByte4) {
		return nil, newFormatError("unrecognized input type tag %d", inputTypeByte)
	}
	f.inputType = InputType(inputTypeByte)

	if packed {
		table, err := packedints.ReadFrom(hr)
		if err != nil {
			return nil, err
		}
		f.nodeRefToAddress = table
	}

	startNode, err := hr.ReadVlong()
	if err != nil {
		return nil, err
	}
	f.startNode = startNode

	nodeCount, err := hr.ReadVlong()
	if err != nil {
		return nil, err
	}
	f.nodeCount = nodeCount

	arcCount, err := hr.ReadVlong()
	if err != nil {
		return nil, err
	}
	f.arcCount = arcCount

	arcWithOutputCount, err := hr.ReadVlong()
	if err != nil {
		return nil, err
	}
	f.arcWithOutputCount = arcWithOutputCount

	totalArcBytes, err := hr.ReadVlong()
	if err != nil {
		return nil, err
	}

	// Read the arc body through the header reader's buffer: it may already
	// hold bytes that follow the header.
	bs, err := store.NewFromReader(hr.r, totalArcBytes, store.DefaultBlockBits)
	if err != nil {
		return nil, err
	}
	f.bytes = bs

	if err := f.populateRootArcCache(); err != nil {
		return nil, err
	}
	return f, nil
}

func drainBytes(bs *store.ByteStore) []byte {
	out := make([]byte, bs.GetPosition())
	fr := bs.GetForwardReader()
	for i := range out {
		b, _ := fr.ReadByte()
		out[i] = b
	}
	return out
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
