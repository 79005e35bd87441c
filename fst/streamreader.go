package fst

import (
	"bufio"
	"io"

	"github.com/cybroslabs/go-fst/store"
)

// streamByteReader adapts a plain io.Reader into a store.BytesReader for
// parsing the fixed-shape header that precedes the raw arc-byte buffer
// in Save's output, before the total length needed for
// store.NewFromReader is known. It is forward-only and single-pass;
// SetPosition/SkipBytes are not meaningful on it and are not called by
// Load, which only ever reads forward through the header once.
type streamByteReader struct {
	r   *bufio.Reader
	pos int64
}

func newStreamByteReader(r io.Reader) *streamByteReader {
	return &streamByteReader{r: bufio.NewReader(r)}
}

func (s *streamByteReader) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, store.NewIoError(err)
	}
	s.pos++
	return b, nil
}

func (s *streamByteReader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	read, err := io.ReadFull(s.r, out)
	s.pos += int64(read)
	if err != nil {
		return nil, store.NewIoError(err)
	}
	return out, nil
}

func (s *streamByteReader) ReadVint() (int, error) {
	var result uint32
	shift := uint(0)
	for {
		b, err := s.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= (uint32(b) & 0x7f) << shift
		if b < 0x80 {
			return int(result), nil
		}
		shift += 7
	}
}

func (s *streamByteReader) ReadVlong() (int64, error) {
	var result uint64
	shift := uint(0)
	for {
		b, err := s.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= (uint64(b) & 0x7f) << shift
		if b < 0x80 {
			return int64(result), nil
		}
		shift += 7
	}
}

func (s *streamByteReader) ReadInt() (int32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

func (s *streamByteReader) ReadShort() (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (s *streamByteReader) GetPosition() int64    { return s.pos }
func (s *streamByteReader) SetPosition(pos int64) { panic("fst: streamByteReader is forward-only") }
func (s *streamByteReader) SkipBytes(n int) {
	if _, err := s.ReadBytes(n); err != nil {
		panic(err)
	}
}
func (s *streamByteReader) Reversed() bool { return false }
