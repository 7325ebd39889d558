package codec

import "github.com/nop-go/nop/stream"

// Codec is the per-type contract every wire codec in this module satisfies
// (spec §4.1): it knows how large a value encodes to, which prefix byte it
// writes, which prefixes it is willing to accept back, and how to move a
// value between Go and the wire.
//
// T is resolved at compile time by the caller (a Codec[int32], a
// Codec[[]string], ...), the direct analogue of the source library's
// template-instantiated per-type encoder/decoder pair. Where a type isn't
// known until runtime — an aggregate's reflected field, a table entry's
// declared member type — the registry in registry.go bridges a Codec[T] into
// the reflect.Value-based Coder interface.
type Codec[T any] interface {
	// Size returns the number of bytes Write(v, ...) will emit. It is exact
	// except where a codec documents an estimate: handle.Codec (whose
	// side-channel index is only assigned by Write) and a table.Codec with
	// compressed fields.
	Size(v T) int

	// Matches reports whether p is a prefix this codec's Read accepts.
	Matches(p byte) bool

	// Write encodes v, including its leading prefix byte.
	Write(v T, w stream.Writer) error

	// Read decodes a value into dst, including consuming its prefix byte.
	Read(dst *T, r stream.Reader) error
}
