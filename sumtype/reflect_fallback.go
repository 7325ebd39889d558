package sumtype

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// init registers reflect-driven Coders for Optional[T] and Result[E,T] so
// that a field typed as one of them inside an aggregate, a table entry, or
// an RPC argument/return struct resolves through codec.For without the
// caller having to hand-build an OptionalCodec/ResultCodec and
// codec.Register it first. Variant has no such fallback: its case table
// can't be recovered from the type alone, so it must still be constructed
// explicitly via NewVariantCodec and registered by the caller.
func init() {
	codec.RegisterFallback(func(t reflect.Type) (codec.Coder, bool) {
		if t.Kind() != reflect.Struct {
			return nil, false
		}
		if c, ok := optionalFallback(t); ok {
			return c, true
		}
		return resultFallback(t)
	})
}

func optionalFallback(t reflect.Type) (codec.Coder, bool) {
	if t.NumField() != 2 {
		return nil, false
	}
	valid, value := t.Field(0), t.Field(1)
	if valid.Name != "Valid" || valid.Type.Kind() != reflect.Bool || value.Name != "Value" {
		return nil, false
	}

	inner, ok := codec.For(value.Type)
	if !ok {
		return nil, false
	}
	return reflectOptional{typ: t, inner: inner}, true
}

func resultFallback(t reflect.Type) (codec.Coder, bool) {
	if t.NumField() != 3 {
		return nil, false
	}
	isError, errField, value := t.Field(0), t.Field(1), t.Field(2)
	if isError.Name != "IsError" || isError.Type.Kind() != reflect.Bool ||
		errField.Name != "Err" || errField.Type.Kind() != reflect.Int32 || value.Name != "Value" {
		return nil, false
	}

	inner, ok := codec.For(value.Type)
	if !ok {
		return nil, false
	}
	return reflectResult{typ: t, errType: errField.Type, inner: inner}, true
}

// reflectOptional is the reflect.Value-driven twin of OptionalCodec[T],
// used where T is only known at runtime (e.g. an aggregate field).
type reflectOptional struct {
	typ   reflect.Type
	inner codec.Coder
}

func (c reflectOptional) Size(v reflect.Value) int {
	if !v.FieldByName("Valid").Bool() {
		return 1
	}
	return c.inner.Size(v.FieldByName("Value"))
}

func (c reflectOptional) Matches(p byte) bool { return p == wire.Nil || c.inner.Matches(p) }

func (c reflectOptional) Write(v reflect.Value, w stream.Writer) error {
	if !v.FieldByName("Valid").Bool() {
		return w.WriteByte(wire.Nil)
	}
	return c.inner.Write(v.FieldByName("Value"), w)
}

func (c reflectOptional) Read(v reflect.Value, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}

	if p == wire.Nil {
		v.Set(reflect.Zero(c.typ))
		return nil
	}

	if !c.inner.Matches(p) {
		return fmt.Errorf("read optional: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	v.FieldByName("Valid").SetBool(true)
	return c.inner.Read(v.FieldByName("Value"), stream.Pushback(r, p))
}

// reflectResult is the reflect.Value-driven twin of ResultCodec[E,T].
type reflectResult struct {
	typ     reflect.Type
	errType reflect.Type
	inner   codec.Coder
}

func (c reflectResult) Size(v reflect.Value) int {
	if v.FieldByName("IsError").Bool() {
		return 1 + (codec.Int32{}).Size(int32(v.FieldByName("Err").Int())) //nolint:gosec
	}
	return c.inner.Size(v.FieldByName("Value"))
}

func (c reflectResult) Matches(p byte) bool { return p == wire.Error || c.inner.Matches(p) }

func (c reflectResult) Write(v reflect.Value, w stream.Writer) error {
	if v.FieldByName("IsError").Bool() {
		if err := w.WriteByte(wire.Error); err != nil {
			return err
		}
		return (codec.Int32{}).Write(int32(v.FieldByName("Err").Int()), w) //nolint:gosec
	}
	return c.inner.Write(v.FieldByName("Value"), w)
}

func (c reflectResult) Read(v reflect.Value, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}

	if p == wire.Error {
		var code int32
		if err := (codec.Int32{}).Read(&code, r); err != nil {
			return err
		}
		v.Set(reflect.Zero(c.typ))
		v.FieldByName("IsError").SetBool(true)
		v.FieldByName("Err").SetInt(int64(code))
		return nil
	}

	if !c.inner.Matches(p) {
		return fmt.Errorf("read result: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	v.Set(reflect.Zero(c.typ))
	return c.inner.Read(v.FieldByName("Value"), stream.Pushback(r, p))
}
