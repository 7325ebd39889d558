package sumtype

import (
	"testing"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/stream"
	"github.com/stretchr/testify/require"
)

func TestOptionalRoundTrip(t *testing.T) {
	c := NewOptional[int32](codec.Int32{})

	for _, v := range []Optional[int32]{Some[int32](7), None[int32]()} {
		require := require.New(t)

		w := stream.NewSliceWriter()
		require.NoError(c.Write(v, w))

		r := stream.NewSliceReader(w.Bytes(), nil)
		var got Optional[int32]
		require.NoError(c.Read(&got, r))
		require.Equal(v, got)
		w.Release()
	}
}

func TestOptionalMatches(t *testing.T) {
	c := NewOptional[int32](codec.Int32{})
	require.True(t, c.Matches(0xBE)) // wire.Nil
	require.True(t, c.Matches(0x05)) // small positive int
}

type errorCode int32

const (
	errNone errorCode = 0
	errBoom errorCode = 1
)

func TestResultRoundTripValue(t *testing.T) {
	require := require.New(t)
	c := NewResult[errorCode, int32](codec.Int32{})

	v := Ok[errorCode, int32](99)
	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError(c.Write(v, w))

	r := stream.NewSliceReader(w.Bytes(), nil)
	var got Result[errorCode, int32]
	require.NoError(c.Read(&got, r))
	require.Equal(v, got)
}

func TestResultRoundTripError(t *testing.T) {
	require := require.New(t)
	c := NewResult[errorCode, int32](codec.Int32{})

	v := Err[errorCode, int32](errBoom)
	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError(c.Write(v, w))

	r := stream.NewSliceReader(w.Bytes(), nil)
	var got Result[errorCode, int32]
	require.NoError(c.Read(&got, r))
	require.Equal(v, got)
	require.True(got.IsError)
	require.Equal(errBoom, got.Err)
}

func TestVariantRoundTrip(t *testing.T) {
	require := require.New(t)
	c := NewVariantCodec(NewCase[int32](), NewCase[string]())

	intV := Variant{Index: 0, Value: int32(42)}
	w := stream.NewSliceWriter()
	require.NoError(c.Write(intV, w))
	r := stream.NewSliceReader(w.Bytes(), nil)
	var got Variant
	require.NoError(c.Read(&got, r))
	require.Equal(intV, got)
	w.Release()

	strV := Variant{Index: 1, Value: "hi"}
	w = stream.NewSliceWriter()
	require.NoError(c.Write(strV, w))
	r = stream.NewSliceReader(w.Bytes(), nil)
	require.NoError(c.Read(&got, r))
	require.Equal(strV, got)
	w.Release()
}

func TestVariantEmptyRoundTrip(t *testing.T) {
	require := require.New(t)
	c := NewVariantCodec(NewCase[int32]())

	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError(c.Write(Empty(), w))

	r := stream.NewSliceReader(w.Bytes(), nil)
	var got Variant
	require.NoError(c.Read(&got, r))
	require.Equal(EmptyVariant, got.Index)
}

func TestVariantIndexOutOfRangeRejected(t *testing.T) {
	c := NewVariantCodec(NewCase[int32]())
	w := stream.NewSliceWriter()
	defer w.Release()
	err := c.Write(Variant{Index: 5, Value: int32(1)}, w)
	require.Error(t, err)
}
