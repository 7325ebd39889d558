// Package sumtype implements the three sum-type categories of spec §4.4:
// Optional[T] (present-or-empty), Variant (a closed tag-indexed union), and
// Result[E,T] (inline value or an error enum). Go has no closed union type,
// so each is modeled the way the ecosystem already does it elsewhere —
// Optional as a struct with a validity flag (the usual Go "maybe" idiom),
// Variant as a registered case table keyed by index (the same shape
// encoding/gob's interface registration and protobuf's oneof use), and
// Result as a two-armed struct mirroring the wire contract directly.
package sumtype

import (
	"fmt"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Optional holds either nothing or a value of T.
type Optional[T any] struct {
	Valid bool
	Value T
}

// Some builds a present Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Valid: true, Value: v} }

// None builds an empty Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// OptionalCodec codecs an Optional[T] given a Codec for the inner type.
type OptionalCodec[T any] struct {
	Inner codec.Codec[T]
}

func NewOptional[T any](inner codec.Codec[T]) OptionalCodec[T] {
	return OptionalCodec[T]{Inner: inner}
}

func (c OptionalCodec[T]) Size(v Optional[T]) int {
	if !v.Valid {
		return 1
	}
	return c.Inner.Size(v.Value)
}

// Matches accepts either Nil or any prefix the inner type accepts, per
// spec §4.4.
func (c OptionalCodec[T]) Matches(p byte) bool {
	return p == wire.Nil || c.Inner.Matches(p)
}

func (c OptionalCodec[T]) Write(v Optional[T], w stream.Writer) error {
	if !v.Valid {
		return w.WriteByte(wire.Nil)
	}
	return c.Inner.Write(v.Value, w)
}

func (c OptionalCodec[T]) Read(dst *Optional[T], r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}

	if p == wire.Nil {
		*dst = Optional[T]{}
		return nil
	}

	if !c.Inner.Matches(p) {
		return fmt.Errorf("read optional: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	dst.Valid = true
	return c.Inner.Read(&dst.Value, stream.Pushback(r, p))
}
