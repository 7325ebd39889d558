package codec

import (
	"fmt"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Go generics cannot express the source library's arbitrary-arity
// heterogeneous tuple (there is no way to parameterize a type over "N
// distinct type parameters"). This module caps tuples at arity 4 and
// documents wider aggregates as a reason to use a registered struct instead.
// A registered struct is framed as a Structure rather than the Array a tuple
// uses, so the two are not wire-identical (see SPEC_FULL.md's REDESIGN note).

// Pair2 is a two-element heterogeneous tuple, wire-framed as an Array of
// arity 2 (spec §4.2).
type Pair2[A, B any] struct {
	First  A
	Second B
}

// Tuple2 codecs a Pair2[A, B] given codecs for each element.
type Tuple2[A, B any] struct {
	A Codec[A]
	B Codec[B]
}

func NewTuple2[A, B any](a Codec[A], b Codec[B]) Tuple2[A, B] { return Tuple2[A, B]{A: a, B: b} }

func (c Tuple2[A, B]) Size(v Pair2[A, B]) int {
	return 1 + SizeOfSize(2) + c.A.Size(v.First) + c.B.Size(v.Second)
}

func (c Tuple2[A, B]) Matches(p byte) bool { return p == wire.Array }

func (c Tuple2[A, B]) Write(v Pair2[A, B], w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := WriteSize(w, 2); err != nil {
		return err
	}
	if err := c.A.Write(v.First, w); err != nil {
		return err
	}
	return c.B.Write(v.Second, w)
}

func (c Tuple2[A, B]) Read(dst *Pair2[A, B], r stream.Reader) error {
	if err := expectTupleArity(r, 2); err != nil {
		return err
	}
	if err := c.A.Read(&dst.First, r); err != nil {
		return err
	}
	return c.B.Read(&dst.Second, r)
}

// Triple3 is a three-element heterogeneous tuple.
type Triple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Tuple3 codecs a Triple3[A, B, C].
type Tuple3[A, B, C any] struct {
	A Codec[A]
	B Codec[B]
	C Codec[C]
}

func NewTuple3[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Tuple3[A, B, C] {
	return Tuple3[A, B, C]{A: a, B: b, C: c}
}

func (t Tuple3[A, B, C]) Size(v Triple3[A, B, C]) int {
	return 1 + SizeOfSize(3) + t.A.Size(v.First) + t.B.Size(v.Second) + t.C.Size(v.Third)
}

func (t Tuple3[A, B, C]) Matches(p byte) bool { return p == wire.Array }

func (t Tuple3[A, B, C]) Write(v Triple3[A, B, C], w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := WriteSize(w, 3); err != nil {
		return err
	}
	if err := t.A.Write(v.First, w); err != nil {
		return err
	}
	if err := t.B.Write(v.Second, w); err != nil {
		return err
	}
	return t.C.Write(v.Third, w)
}

func (t Tuple3[A, B, C]) Read(dst *Triple3[A, B, C], r stream.Reader) error {
	if err := expectTupleArity(r, 3); err != nil {
		return err
	}
	if err := t.A.Read(&dst.First, r); err != nil {
		return err
	}
	if err := t.B.Read(&dst.Second, r); err != nil {
		return err
	}
	return t.C.Read(&dst.Third, r)
}

// Quad4 is a four-element heterogeneous tuple, the widest arity this module
// supports directly.
type Quad4[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// Tuple4 codecs a Quad4[A, B, C, D].
type Tuple4[A, B, C, D any] struct {
	A Codec[A]
	B Codec[B]
	C Codec[C]
	D Codec[D]
}

func NewTuple4[A, B, C, D any](a Codec[A], b Codec[B], c Codec[C], d Codec[D]) Tuple4[A, B, C, D] {
	return Tuple4[A, B, C, D]{A: a, B: b, C: c, D: d}
}

func (t Tuple4[A, B, C, D]) Size(v Quad4[A, B, C, D]) int {
	return 1 + SizeOfSize(4) + t.A.Size(v.First) + t.B.Size(v.Second) + t.C.Size(v.Third) + t.D.Size(v.Fourth)
}

func (t Tuple4[A, B, C, D]) Matches(p byte) bool { return p == wire.Array }

func (t Tuple4[A, B, C, D]) Write(v Quad4[A, B, C, D], w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := WriteSize(w, 4); err != nil {
		return err
	}
	if err := t.A.Write(v.First, w); err != nil {
		return err
	}
	if err := t.B.Write(v.Second, w); err != nil {
		return err
	}
	if err := t.C.Write(v.Third, w); err != nil {
		return err
	}
	return t.D.Write(v.Fourth, w)
}

func (t Tuple4[A, B, C, D]) Read(dst *Quad4[A, B, C, D], r stream.Reader) error {
	if err := expectTupleArity(r, 4); err != nil {
		return err
	}
	if err := t.A.Read(&dst.First, r); err != nil {
		return err
	}
	if err := t.B.Read(&dst.Second, r); err != nil {
		return err
	}
	if err := t.C.Read(&dst.Third, r); err != nil {
		return err
	}
	return t.D.Read(&dst.Fourth, r)
}

func expectTupleArity(r stream.Reader, want int) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Array {
		return fmt.Errorf("read tuple: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("read tuple: got arity %d, want %d: %w", n, want, errs.ErrInvalidMemberCount)
	}
	return nil
}
