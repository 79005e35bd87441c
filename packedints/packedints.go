// Package packedints implements the small bit-packed integer array the
// core uses for the pack-time dense-id-to-address deref table.
//
// Rather than arbitrary bit-width packing, values are stored at one of a
// fixed set of byte-aligned widths (1, 2, 3, 4, 5, 6, 7 or 8 bytes per
// value) — the simplification spec.md §9 explicitly allows ("a
// straightforward bit-packed vector with a small set of bit widths ...
// is sufficient"). This mirrors the teacher's own preference for
// byte-aligned framing over true bit-packing (dlmsal's BER length
// encoding picks from a small set of byte widths rather than packing
// arbitrary bit counts; v44's bit-level emitter is the one counterexample
// in the pack, and is not used here because nothing in this format needs
// sub-byte granularity).
package packedints

import "github.com/cybroslabs/go-fst/store"

// BitsRequired returns the number of bits needed to represent v (v must
// be non-negative), rounded up to at least 1.
func BitsRequired(v int64) int {
	if v < 0 {
		panic("packedints: BitsRequired called with negative value")
	}
	if v == 0 {
		return 1
	}
	bits := 0
	for v > 0 {
		bits++
		v >>= 1
	}
	return bits
}

// bytesForBits maps a bit-width to the number of bytes needed to store it
// byte-aligned (so bits 1..8 -> 1, 9..16 -> 2, and so on up to 57..64 -> 8).
func bytesForBits(bits int) int {
	n := (bits + 7) / 8
	if n < 1 {
		n = 1
	}
	if n > 8 {
		panic("packedints: value requires more than 64 bits")
	}
	return n
}

// Mutable is a fixed-length, growable-width array of non-negative
// integers, used while building the deref table: values are written as
// they become known and the array is frozen into a Reader once finished.
type Mutable struct {
	values       []int64
	bytesPerValue int
}

// NewMutable allocates a Mutable of the given length, wide enough to hold
// maxValue in every slot.
func NewMutable(length int, maxValue int64) *Mutable {
	return &Mutable{
		values:        make([]int64, length),
		bytesPerValue: bytesForBits(BitsRequired(maxValue)),
	}
}

// Get returns the value at index i.
func (m *Mutable) Get(i int) int64 { return m.values[i] }

// Set stores v at index i, growing the per-value width in place if v does
// not fit in the current width (existing values remain correct since
// they are stored logically, not as packed bytes, until Freeze).
func (m *Mutable) Set(i int, v int64) {
	m.values[i] = v
	need := bytesForBits(BitsRequired(v))
	if need > m.bytesPerValue {
		m.bytesPerValue = need
	}
}

// Len returns the number of slots.
func (m *Mutable) Len() int { return len(m.values) }

// BytesPerValue returns the current per-value byte width.
func (m *Mutable) BytesPerValue() int { return m.bytesPerValue }

// Freeze packs the current values at the current width into a Reader.
func (m *Mutable) Freeze() *Reader {
	r := &Reader{
		bytesPerValue: m.bytesPerValue,
		length:        len(m.values),
		data:          make([]byte, len(m.values)*m.bytesPerValue),
	}
	for i, v := range m.values {
		r.putAt(i, v)
	}
	return r
}

// Reader is an immutable, byte-aligned packed integer array.
type Reader struct {
	bytesPerValue int
	length        int
	data          []byte
}

// Len returns the number of values.
func (r *Reader) Len() int { return r.length }

// BytesPerValue returns the per-value byte width.
func (r *Reader) BytesPerValue() int { return r.bytesPerValue }

// Get returns the value at index i.
func (r *Reader) Get(i int) int64 {
	off := i * r.bytesPerValue
	var v uint64
	for k := 0; k < r.bytesPerValue; k++ {
		v |= uint64(r.data[off+k]) << (8 * uint(k))
	}
	return int64(v)
}

func (r *Reader) putAt(i int, v int64) {
	off := i * r.bytesPerValue
	u := uint64(v)
	for k := 0; k < r.bytesPerValue; k++ {
		r.data[off+k] = byte(u >> (8 * uint(k)))
	}
}

// WriteTo serializes the array as: vint bytesPerValue, vint length,
// followed by length*bytesPerValue raw bytes.
func (r *Reader) WriteTo(bs *store.ByteStore) {
	bs.WriteVint(r.bytesPerValue)
	bs.WriteVint(r.length)
	bs.WriteBytes(r.data)
}

// ReadFrom decodes a Reader previously written by WriteTo.
func ReadFrom(br store.BytesReader) (*Reader, error) {
	bpv, err := br.ReadVint()
	if err != nil {
		return nil, err
	}
	length, err := br.ReadVint()
	if err != nil {
		return nil, err
	}
	if bpv < 1 || bpv > 8 {
		return nil, store.NewFormatError("packed integer width out of range: %d", bpv)
	}
	data, err := br.ReadBytes(length * bpv)
	if err != nil {
		return nil, err
	}
	return &Reader{bytesPerValue: bpv, length: length, data: data}, nil
}
