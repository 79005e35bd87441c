package fst_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cybroslabs/go-fst/fst"
	"github.com/cybroslabs/go-fst/outputs"
)

func strToInput(s string) []int {
	out := make([]int, len(s))
	for i, b := range []byte(s) {
		out[i] = int(b)
	}
	return out
}

func TestSingleEntry(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(strToInput("a"), 1))

	f, err := b.Finish()
	require.NoError(t, err)

	v, ok, err := f.Get(strToInput("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	_, ok, err = f.Get(strToInput("b"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatCarCart(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)

	require.NoError(t, b.Add(strToInput("car"), 5))
	require.NoError(t, b.Add(strToInput("cart"), 7))
	require.NoError(t, b.Add(strToInput("cat"), 11))

	f, err := b.Finish()
	require.NoError(t, err)

	cases := []struct {
		input string
		want  int64
	}{
		{"car", 5},
		{"cart", 7},
		{"cat", 11},
	}
	for _, c := range cases {
		v, ok, err := f.Get(strToInput(c.input))
		require.NoError(t, err)
		require.True(t, ok, "expected %q to be found", c.input)
		require.Equal(t, c.want, v, "for input %q", c.input)
	}

	for _, miss := range []string{"ca", "carts", "dog", ""} {
		_, ok, err := f.Get(strToInput(miss))
		require.NoError(t, err)
		require.False(t, ok, "expected %q to be absent", miss)
	}
}

func TestEmptyInputOutput(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(nil, 42))
	require.NoError(t, b.Add(strToInput("x"), 1))

	f, err := b.Finish()
	require.NoError(t, err)

	v, ok := f.HasEmptyOutput()
	require.True(t, ok)
	require.Equal(t, int64(42), v)

	got, ok, err := f.Get(nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(42), got)
}

func TestFixedArrayNodeWithManyArcs(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)

	letters := "abcdefghijk" // 11 siblings off the root, exceeds the fixed-array threshold
	for i, l := range letters {
		require.NoError(t, b.Add([]int{int(l)}, int64(i)))
	}
	f, err := b.Finish()
	require.NoError(t, err)

	for i, l := range letters {
		v, ok, err := f.Get([]int{int(l)})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(i), v)
	}
}

func TestBuilderRejectsUnsortedInput(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(strToInput("b"), 1))
	err = b.Add(strToInput("a"), 2)
	require.Error(t, err)
	var ise *fst.IllegalStateError
	require.ErrorAs(t, err, &ise)
}

func TestBuilderRejectsAddAfterFinish(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(strToInput("a"), 1))
	_, err = b.Finish()
	require.NoError(t, err)

	err = b.Add(strToInput("b"), 2)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(strToInput("car"), 5))
	require.NoError(t, b.Add(strToInput("cart"), 7))
	require.NoError(t, b.Add(strToInput("cat"), 11))
	f, err := b.Finish()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Save(&buf))

	loaded, err := fst.Load[int64](bytes.NewReader(buf.Bytes()), outputs.Int64{})
	require.NoError(t, err)

	for _, c := range []struct {
		input string
		want  int64
	}{{"car", 5}, {"cart", 7}, {"cat", 11}} {
		v, ok, err := loaded.Get(strToInput(c.input))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, c.want, v)
	}
	require.Equal(t, f.NodeCount(), loaded.NodeCount())
	require.Equal(t, f.ArcCount(), loaded.ArcCount())
}

func TestSaveLoadWithEmptyOutput(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{})
	require.NoError(t, err)
	require.NoError(t, b.Add(nil, 42))
	require.NoError(t, b.Add(strToInput("x"), 1))
	f, err := b.Finish()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Save(&buf))

	loaded, err := fst.Load[int64](bytes.NewReader(buf.Bytes()), outputs.Int64{})
	require.NoError(t, err)

	v, ok := loaded.HasEmptyOutput()
	require.True(t, ok)
	require.Equal(t, int64(42), v)
}

func TestInputTypeByte2RoundTrip(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte2, outputs.Int64{})
	require.NoError(t, err)
	inputs := [][]int{{100, 60000}, {100, 65535}, {500, 1}}
	for i, in := range inputs {
		require.NoError(t, b.Add(in, int64(i)))
	}
	f, err := b.Finish()
	require.NoError(t, err)

	for i, in := range inputs {
		v, ok, err := f.Get(in)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(i), v)
	}
}

func TestInputTypeByte4RoundTrip(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte4, outputs.Int64{})
	require.NoError(t, err)
	inputs := [][]int{{1, 2}, {1, 1 << 20}, {2}}
	for i, in := range inputs {
		require.NoError(t, b.Add(in, int64(i)))
	}
	f, err := b.Finish()
	require.NoError(t, err)

	for i, in := range inputs {
		v, ok, err := f.Get(in)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int64(i), v)
	}
}

func TestPackPreservesLookups(t *testing.T) {
	b, err := fst.NewBuilder(fst.InputTypeByte1, outputs.Int64{}, fst.WithPacking(true))
	require.NoError(t, err)
	words := []string{"car", "cart", "cat", "dog", "dogs"}
	for i, w := range words {
		require.NoError(t, b.Add(strToInput(w), int64(i)))
	}
	f, err := b.Finish()
	require.NoError(t, err)

	packed, err := fst.Pack(f)
	require.NoError(t, err)
	require.True(t, packed.IsPacked())

	for i, w := range words {
		v, ok, err := packed.Get(strToInput(w))
		require.NoError(t, err)
		require.True(t, ok, "word %q", w)
		require.Equal(t, int64(i), v, "word %q", w)
	}
}
