package codec

import (
	"reflect"
	"testing"

	"github.com/nop-go/nop/stream"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	require := require.New(t)

	w := stream.NewSliceWriter()
	defer w.Release()

	require.NoError(c.Write(v, w))
	require.Equal(c.Size(v), w.Len())

	r := stream.NewSliceReader(w.Bytes(), nil)
	var got T
	require.NoError(c.Read(&got, r))
	require.Equal(0, r.Remaining(), "codec must consume exactly its own encoding")

	return got
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		got := roundTrip(t, Bool{}, v)
		require.Equal(t, v, got)
	}
}

func TestUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 42, 127, 128, 255, 256, 65535, 65536, 1<<32 - 1, 1 << 40}
	for _, v := range cases {
		got := roundTrip(t, Uint64{}, v)
		require.Equal(t, v, got)
	}
}

func TestIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -32, -33, 128, -129, 1 << 20, -(1 << 20), 1<<40 - 1, -(1 << 40)}
	for _, v := range cases {
		got := roundTrip(t, Int64{}, v)
		require.Equal(t, v, got)
	}
}

func TestSmallIntEncodesAsSingleByte(t *testing.T) {
	require := require.New(t)

	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError((Uint8{}).Write(42, w))
	require.Equal(1, w.Len())
	require.Equal(byte(42), w.Bytes()[0])
}

func TestNegativeSmallIntEncodesAsSingleByte(t *testing.T) {
	require := require.New(t)

	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError((Int8{}).Write(-1, w))
	require.Equal(1, w.Len())
	require.GreaterOrEqual(w.Bytes()[0], byte(0xC0))
}

func TestNarrowerDecoderRejectsWiderPrefix(t *testing.T) {
	require := require.New(t)

	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError((Uint32{}).Write(1<<20, w))

	r := stream.NewSliceReader(w.Bytes(), nil)
	var v uint8
	require.Error((Uint8{}).Read(&v, r))
}

func TestFloatRoundTrip(t *testing.T) {
	got32 := roundTrip(t, Float32{}, float32(3.5))
	require.InDelta(t, float32(3.5), got32, 0)

	got64 := roundTrip(t, Float64{}, 2.718281828)
	require.InDelta(t, 2.718281828, got64, 0)
}

func TestStringRoundTrip(t *testing.T) {
	for _, v := range []string{"", "a", "hello, world", string(make([]byte, 300))} {
		got := roundTrip(t, StringCodec{}, v)
		require.Equal(t, v, got)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	v := []byte{1, 2, 3, 4, 5}
	got := roundTrip(t, BinaryCodec{}, v)
	require.Equal(t, v, got)
}

func TestSliceRoundTrip(t *testing.T) {
	c := NewSlice[int32](Int32{})
	v := []int32{1, -2, 300, 0}
	got := roundTrip(t, c, v)
	require.Equal(t, v, got)
}

func TestSliceRoundTripEmpty(t *testing.T) {
	c := NewSlice[int32](Int32{})
	got := roundTrip(t, c, []int32{})
	require.Empty(t, got)
}

func TestPackedSliceRoundTrip(t *testing.T) {
	c := NewPackedSlice[int32]()
	v := []int32{1, -2, 300, 0, 1 << 20}
	got := roundTrip(t, c, v)
	require.Equal(t, v, got)
}

func TestPackedSliceWidths(t *testing.T) {
	require.Equal(t, 1, NewPackedSlice[uint8]().width)
	require.Equal(t, 2, NewPackedSlice[int16]().width)
	require.Equal(t, 4, NewPackedSlice[uint32]().width)
	require.Equal(t, 8, NewPackedSlice[int64]().width)
}

func TestMapRoundTrip(t *testing.T) {
	c := NewMap[string, int32](StringCodec{}, Int32{})
	v := map[string]int32{"a": 1, "b": -2}
	got := roundTrip(t, c, v)
	require.Equal(t, v, got)
}

func TestTupleRoundTrip(t *testing.T) {
	c := Tuple2[int32, string]{A: Int32{}, B: StringCodec{}}
	v := Pair2[int32, string]{First: 7, Second: "x"}
	got := roundTrip(t, c, v)
	require.Equal(t, v, got)
}

func TestRegistryDerivesSliceAndMap(t *testing.T) {
	require := require.New(t)

	c1, ok := For(reflect.TypeOf([]int32{}))
	require.True(ok)
	require.True(c1.Matches(0xBA)) // wire.Array

	c2, ok := For(reflect.TypeOf(map[string]int32{}))
	require.True(ok)
	require.True(c2.Matches(0xBB)) // wire.Map
}
