package packedints_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cybroslabs/go-fst/packedints"
	"github.com/cybroslabs/go-fst/store"
)

func TestBitsRequired(t *testing.T) {
	require.Equal(t, 1, packedints.BitsRequired(0))
	require.Equal(t, 1, packedints.BitsRequired(1))
	require.Equal(t, 8, packedints.BitsRequired(255))
	require.Equal(t, 9, packedints.BitsRequired(256))
	require.Equal(t, 32, packedints.BitsRequired(1<<31))
}

func TestMutableGrowsWidthInPlace(t *testing.T) {
	m := packedints.NewMutable(4, 0)
	require.Equal(t, 1, m.BytesPerValue())

	m.Set(0, 10)
	m.Set(1, 300)
	require.Equal(t, 2, m.BytesPerValue())
	m.Set(2, 1<<20)
	require.Equal(t, 3, m.BytesPerValue())

	require.Equal(t, int64(10), m.Get(0))
	require.Equal(t, int64(300), m.Get(1))
	require.Equal(t, int64(1<<20), m.Get(2))
	require.Equal(t, int64(0), m.Get(3))
}

func TestFreezeRoundTrip(t *testing.T) {
	m := packedints.NewMutable(5, 1<<20)
	for i := 0; i < 5; i++ {
		m.Set(i, int64(i*99999))
	}
	r := m.Freeze()
	require.Equal(t, 5, r.Len())
	for i := 0; i < 5; i++ {
		require.Equal(t, int64(i*99999), r.Get(i))
	}
}

func TestWriteToReadFromRoundTrip(t *testing.T) {
	m := packedints.NewMutable(3, 1<<40)
	m.Set(0, 5)
	m.Set(1, 1<<39)
	m.Set(2, 12345)
	r := m.Freeze()

	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	r.WriteTo(bs)

	loaded, err := packedints.ReadFrom(bs.GetForwardReader())
	require.NoError(t, err)
	require.Equal(t, r.BytesPerValue(), loaded.BytesPerValue())
	require.Equal(t, r.Len(), loaded.Len())
	for i := 0; i < 3; i++ {
		require.Equal(t, r.Get(i), loaded.Get(i))
	}
}

func TestReadFromRejectsBadWidth(t *testing.T) {
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	bs.WriteVint(9) // out of range, widths are 1..8
	bs.WriteVint(1)
	bs.WriteByte(0)

	_, err = packedints.ReadFrom(bs.GetForwardReader())
	require.Error(t, err)
	var fe *store.FormatError
	require.ErrorAs(t, err, &fe)
}
