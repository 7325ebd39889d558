package aggregate

import (
	"reflect"

	"github.com/nop-go/nop/stream"
)

// Codec is the typed Codec[T] returned by Define[T]: a compiled struct plan
// bridged back to the generic interface so callers who know T at compile
// time don't have to go through reflect.Value themselves.
type Codec[T any] struct {
	plan *structPlan
}

// Define derives (once, cached) and returns the aggregate codec for T. T
// must be a struct type; calling Define for the same T repeatedly returns
// codecs sharing the same cached plan.
func Define[T any]() Codec[T] {
	return Codec[T]{plan: derivePlan(reflect.TypeFor[T]())}
}

func (c Codec[T]) Size(v T) int { return c.plan.Size(reflect.ValueOf(v)) }

func (c Codec[T]) Matches(p byte) bool { return c.plan.Matches(p) }

func (c Codec[T]) Write(v T, w stream.Writer) error {
	return c.plan.Write(reflect.ValueOf(v), w)
}

func (c Codec[T]) Read(dst *T, r stream.Reader) error {
	return c.plan.Read(reflect.ValueOf(dst).Elem(), r)
}
