package store_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cybroslabs/go-fst/store"
)

func TestByteStoreForwardRoundTrip(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)

	bs.WriteByte(0x42)
	bs.WriteVint(300)
	bs.WriteVlong(1 << 40)
	bs.WriteBytes([]byte("hello"))
	bs.WriteInt(-7)
	bs.WriteShort(65000)

	fr := bs.GetForwardReader()
	b, err := fr.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x42), b)

	vi, err := fr.ReadVint()
	require.NoError(t, err)
	require.Equal(t, 300, vi)

	vl, err := fr.ReadVlong()
	require.NoError(t, err)
	require.Equal(t, int64(1<<40), vl)

	raw, err := fr.ReadBytes(5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), raw)

	i32, err := fr.ReadInt()
	require.NoError(t, err)
	require.Equal(t, int32(-7), i32)

	sh, err := fr.ReadShort()
	require.NoError(t, err)
	require.Equal(t, uint16(65000), sh)
}

func TestByteStoreSpansMultiplePages(t *testing.T) {
	bs, err := store.New(store.MinBlockBits) // 2-byte pages
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		bs.WriteByte(byte(i))
	}
	fr := bs.GetForwardReader()
	for i := 0; i < 1000; i++ {
		b, err := fr.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(i), b)
	}
}

func TestByteStoreReverseReaderReadsBackToFront(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	bs.WriteByte('a')
	bs.WriteByte('b')
	bs.WriteByte('c')

	rr := bs.GetReverseReader()
	rr.SetPosition(2)
	b, err := rr.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('c'), b)
	b, err = rr.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)
	b, err = rr.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), b)
}

func TestByteStoreReverseReaderRejectsFixedWidthInts(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	bs.WriteInt(5)
	rr := bs.GetReverseReader()
	rr.SetPosition(3)
	_, err = rr.ReadInt()
	require.Error(t, err)
	var fe *store.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestByteStoreReverseInPlace(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	bs.WriteBytes([]byte{1, 2, 3, 4, 5})
	bs.Reverse(0, 4)
	fr := bs.GetForwardReader()
	got, err := fr.ReadBytes(5)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 4, 3, 2, 1}, got)
}

func TestByteStoreCopyBytesBackToFront(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	bs.WriteBytes([]byte{1, 2, 3})
	bs.SkipBytes(3)
	bs.CopyBytes(0, 3, 3)
	fr := bs.GetForwardReader()
	got, err := fr.ReadBytes(6)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 1, 2, 3}, got)
}

func TestByteStoreWriteToAndNewFromReader(t *testing.T) {
	bs, err := store.New(store.DefaultBlockBits)
	require.NoError(t, err)
	payload := []byte("the quick brown fox")
	bs.WriteBytes(payload)

	var buf bytes.Buffer
	require.NoError(t, bs.WriteTo(&buf))
	require.Equal(t, payload, buf.Bytes())

	loaded, err := store.NewFromReader(bytes.NewReader(buf.Bytes()), int64(len(payload)), store.DefaultBlockBits)
	require.NoError(t, err)
	fr := loaded.GetForwardReader()
	got, err := fr.ReadBytes(len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestByteStoreRejectsOutOfRangeBlockBits(t *testing.T) {
	_, err := store.New(0)
	require.Error(t, err)
	var ce *store.CapacityExceededError
	require.ErrorAs(t, err, &ce)
}

func TestByteStoreVintVlongLargeValues(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	values := []int64{0, 1, 127, 128, 16384, 1 << 34, 1<<63 - 1}
	for _, v := range values {
		bs.WriteVlong(v)
	}
	fr := bs.GetForwardReader()
	for _, want := range values {
		got, err := fr.ReadVlong()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
