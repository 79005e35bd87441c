package outputs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cybroslabs/go-fst/outputs"
	"github.com/cybroslabs/go-fst/store"
)

func TestInt64Merge(t *testing.T) {
	o := outputs.Int64{}
	require.Equal(t, int64(0), o.NoOutput())
	require.Equal(t, int64(12), o.Merge(5, 7))
	require.Equal(t, int64(5), o.Merge(5, o.NoOutput()))
}

func TestInt64WriteReadRoundTrip(t *testing.T) {
	o := outputs.Int64{}
	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)

	o.Write(123456789, bs)
	o.WriteFinalOutput(42, bs)

	fr := bs.GetForwardReader()
	v, err := o.Read(fr)
	require.NoError(t, err)
	require.Equal(t, int64(123456789), v)

	fv, err := o.ReadFinalOutput(fr)
	require.NoError(t, err)
	require.Equal(t, int64(42), fv)
}

func TestNilOutputsAreAllNoOps(t *testing.T) {
	o := outputs.NilOutputs{}
	require.Equal(t, struct{}{}, o.NoOutput())
	require.Equal(t, struct{}{}, o.Merge(struct{}{}, struct{}{}))

	bs, err := store.New(store.MinBlockBits)
	require.NoError(t, err)
	o.Write(struct{}{}, bs)
	o.WriteFinalOutput(struct{}{}, bs)
	require.Equal(t, int64(0), bs.GetPosition())
}
