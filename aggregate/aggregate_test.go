package aggregate

import (
	"testing"

	"github.com/nop-go/nop/stream"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int32
	Y int32
}

type label struct {
	Name string `nop:"wrapper"`
}

type slicePair struct {
	Data  []int32 `nop:"buffer:Count,unbounded"`
	Count int32
}

type arrayPair struct {
	Data  [4]int32 `nop:"buffer:Count"`
	Count int32
}

func encodeDecode[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	require := require.New(t)

	w := stream.NewSliceWriter()
	defer w.Release()

	require.NoError(c.Write(v, w))
	require.Equal(c.Size(v), w.Len())

	r := stream.NewSliceReader(w.Bytes(), nil)
	var got T
	require.NoError(c.Read(&got, r))
	require.Equal(0, r.Remaining())

	return got
}

func TestStructRoundTrip(t *testing.T) {
	c := Define[point]()
	v := point{X: 1, Y: -2}
	got := encodeDecode(t, c, v)
	require.Equal(t, v, got)
}

func TestWrapperRoundTrip(t *testing.T) {
	c := Define[label]()
	v := label{Name: "cpu.usage"}
	got := encodeDecode(t, c, v)
	require.Equal(t, v, got)

	// A wrapper carries no Structure prefix or member count, just the
	// inner value's own framing.
	w := stream.NewSliceWriter()
	defer w.Release()
	require.NoError(c.Write(v, w))
	require.Equal(t, byte(0xBD), w.Bytes()[0]) // wire.String
}

func TestBufferPairSliceRoundTrip(t *testing.T) {
	c := Define[slicePair]()
	v := slicePair{Data: []int32{1, 2, 3}, Count: 3}
	got := encodeDecode(t, c, v)
	require.Equal(t, v.Data, got.Data)
	require.Equal(t, v.Count, got.Count)
}

func TestBufferPairArrayRoundTrip(t *testing.T) {
	c := Define[arrayPair]()
	v := arrayPair{Data: [4]int32{10, 20, 0, 0}, Count: 2}
	got := encodeDecode(t, c, v)
	require.Equal(t, [4]int32{10, 20, 0, 0}, got.Data)
	require.Equal(t, int32(2), got.Count)
}

func TestBufferPairArrayOverflowRejected(t *testing.T) {
	require := require.New(t)

	c := Define[arrayPair]()
	w := stream.NewSliceWriter()
	defer w.Release()

	// Hand-craft a wire count larger than the array's fixed capacity.
	v := arrayPair{Data: [4]int32{1, 2, 3, 4}, Count: 4}
	require.NoError(c.Write(v, w))

	// Corrupt the encoded buffer-pair count: byte 0 is the Structure
	// prefix, byte 1 the member count, byte 2 the field's Array prefix,
	// byte 3 the buffer-pair element count itself.
	raw := append([]byte(nil), w.Bytes()...)
	raw[3] = 5 // wire count now exceeds arrayLen=4

	r := stream.NewSliceReader(raw, nil)
	var dst arrayPair
	require.Error(c.Read(&dst, r))
}

func TestUnboundedRequiresSlice(t *testing.T) {
	type badArray struct {
		Data  [2]int32 `nop:"buffer:Count,unbounded"`
		Count int32
	}
	require.Panics(t, func() { Define[badArray]() })
}

func TestNestedAggregate(t *testing.T) {
	type line struct {
		A point
		B point
	}
	c := Define[line]()
	v := line{A: point{X: 1, Y: 2}, B: point{X: 3, Y: 4}}
	got := encodeDecode(t, c, v)
	require.Equal(t, v, got)
}
