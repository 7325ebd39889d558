package sumtype

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// EmptyVariant is the sentinel index for a Variant holding no case.
const EmptyVariant = -1

// Variant is a closed, tag-indexed union over a case table declared at
// registration time (spec §4.4). Go has no closed sum type, so the case
// list lives in VariantCodec rather than in Variant's own type — the same
// tradeoff encoding/gob makes for registered interface values.
type Variant struct {
	Index int
	Value any
}

// Empty builds a Variant holding no case.
func Empty() Variant { return Variant{Index: EmptyVariant} }

// Case describes one arm of a Variant's case table: the Go type it carries
// and the Coder used to move it on and off the wire.
type Case struct {
	Type  reflect.Type
	Coder codec.Coder
}

// NewCase builds a Case for T using T's registered Coder.
func NewCase[T any]() Case {
	t := reflect.TypeFor[T]()
	return Case{Type: t, Coder: codec.MustFor(t)}
}

// VariantCodec codecs a Variant over a fixed, ordered case table.
type VariantCodec struct {
	Cases []Case
}

func NewVariantCodec(cases ...Case) VariantCodec { return VariantCodec{Cases: cases} }

func (c VariantCodec) Size(v Variant) int {
	idxSize := codec.Int32{}.Size(int32(v.Index)) //nolint:gosec
	if v.Index == EmptyVariant {
		return 1 + idxSize + 1
	}
	if v.Index < 0 || v.Index >= len(c.Cases) {
		return 1 + idxSize
	}
	return 1 + idxSize + c.Cases[v.Index].Coder.Size(reflect.ValueOf(v.Value))
}

func (VariantCodec) Matches(p byte) bool { return p == wire.Variant }

func (c VariantCodec) Write(v Variant, w stream.Writer) error {
	if err := w.WriteByte(wire.Variant); err != nil {
		return err
	}
	if err := (codec.Int32{}).Write(int32(v.Index), w); err != nil { //nolint:gosec
		return err
	}

	if v.Index == EmptyVariant {
		return w.WriteByte(wire.Nil)
	}

	if v.Index < 0 || v.Index >= len(c.Cases) {
		return fmt.Errorf("write variant: index %d out of range [0,%d): %w", v.Index, len(c.Cases), errs.ErrUnexpectedVariantType)
	}

	return c.Cases[v.Index].Coder.Write(reflect.ValueOf(v.Value), w)
}

func (c VariantCodec) Read(dst *Variant, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Variant {
		return fmt.Errorf("read variant: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	var idx32 int32
	if err := (codec.Int32{}).Read(&idx32, r); err != nil {
		return err
	}
	idx := int(idx32)

	if idx == EmptyVariant {
		nilPfx, err := r.ReadByte()
		if err != nil {
			return err
		}
		if nilPfx != wire.Nil {
			return fmt.Errorf("read variant: empty case prefix 0x%02x: %w", nilPfx, errs.ErrBadFormat)
		}
		*dst = Variant{Index: EmptyVariant}
		return nil
	}

	if idx < 0 || idx >= len(c.Cases) {
		return fmt.Errorf("read variant: index %d out of range [0,%d): %w", idx, len(c.Cases), errs.ErrUnexpectedVariantType)
	}

	caseType := c.Cases[idx].Type
	out := reflect.New(caseType).Elem()
	if err := c.Cases[idx].Coder.Read(out, r); err != nil {
		return err
	}

	*dst = Variant{Index: idx, Value: out.Interface()}
	return nil
}
