package sumtype

import (
	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// ErrorCode bounds the enum-like types a Result's error arm may carry. The
// wire form stores it as its underlying signed 32-bit integer (spec §4.4).
type ErrorCode interface {
	~int32
}

// Result holds either a value of T or an error code of E, never both
// (spec §4.4). Unlike Optional, the value arm carries no extra framing
// beyond T's own encoding: only the error arm adds a distinguishing prefix.
type Result[E ErrorCode, T any] struct {
	IsError bool
	Err     E
	Value   T
}

// Ok builds a value-holding Result.
func Ok[E ErrorCode, T any](v T) Result[E, T] { return Result[E, T]{Value: v} }

// Err builds an error-holding Result.
func Err[E ErrorCode, T any](code E) Result[E, T] { return Result[E, T]{IsError: true, Err: code} }

// ResultCodec codecs a Result[E, T] given a Codec for the value type.
type ResultCodec[E ErrorCode, T any] struct {
	Inner codec.Codec[T]
}

func NewResult[E ErrorCode, T any](inner codec.Codec[T]) ResultCodec[E, T] {
	return ResultCodec[E, T]{Inner: inner}
}

func (c ResultCodec[E, T]) Size(v Result[E, T]) int {
	if v.IsError {
		return 1 + (codec.Int32{}).Size(int32(v.Err))
	}
	return c.Inner.Size(v.Value)
}

func (c ResultCodec[E, T]) Matches(p byte) bool {
	return p == wire.Error || c.Inner.Matches(p)
}

func (c ResultCodec[E, T]) Write(v Result[E, T], w stream.Writer) error {
	if v.IsError {
		if err := w.WriteByte(wire.Error); err != nil {
			return err
		}
		return (codec.Int32{}).Write(int32(v.Err), w)
	}
	return c.Inner.Write(v.Value, w)
}

func (c ResultCodec[E, T]) Read(dst *Result[E, T], r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}

	if p == wire.Error {
		var code int32
		if err := (codec.Int32{}).Read(&code, r); err != nil {
			return err
		}
		*dst = Result[E, T]{IsError: true, Err: E(code)}
		return nil
	}

	var value T
	if err := c.Inner.Read(&value, stream.Pushback(r, p)); err != nil {
		return err
	}
	*dst = Result[E, T]{Value: value}
	return nil
}
