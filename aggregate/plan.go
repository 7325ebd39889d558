// Package aggregate implements the Structure and value-wrapper codec
// (spec §4.3): a reflect-based "derive macro" substitute that walks a
// struct's fields once, compiles a field plan keyed off `nop` struct
// tags, and caches it in a package-level sync.Map the same
// build-once-from-a-declarative-description idiom internal/options uses
// for configuration.
package aggregate

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// fieldPlan describes one logical member of an aggregate: either a single
// regular field, or a buffer pair collapsed into one sequence member.
type fieldPlan struct {
	dataIndex  []int
	countIndex []int // non-nil for a buffer pair
	coder      codec.Coder
	unbounded  bool
	isArray    bool // dataIndex field is a fixed-size Go array, not a slice
	arrayLen   int
}

// structPlan is the compiled, cached derivation for one Go struct type. It
// satisfies codec.Coder directly so it can serve both Define[T]'s typed
// wrapper and the reflect-driven fallback registered with the codec
// registry for nested aggregate fields.
type structPlan struct {
	typ       reflect.Type
	isWrapper bool
	wrapper   fieldPlan
	fields    []fieldPlan
}

var (
	plans sync.Map // reflect.Type -> *structPlan
	// building guards against infinite recursion while a type's own plan is
	// still being derived (a struct that embeds itself by pointer, e.g.).
	building sync.Map // reflect.Type -> struct{}
)

func derivePlan(t reflect.Type) *structPlan {
	if p, ok := plans.Load(t); ok {
		return p.(*structPlan) //nolint:forcetypeassert
	}
	if _, inProgress := building.LoadOrStore(t, struct{}{}); inProgress {
		panic(fmt.Sprintf("aggregate: cyclic derivation for %s", t))
	}
	defer building.Delete(t)

	p := buildPlan(t)
	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*structPlan) //nolint:forcetypeassert
}

func buildPlan(t reflect.Type) *structPlan {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("aggregate: %s is not a struct", t))
	}

	plan := &structPlan{typ: t}

	if t.NumField() == 1 {
		tag := parseTag(t.Field(0).Tag.Get("nop"))
		if tag.wrapper {
			plan.isWrapper = true
			plan.wrapper = fieldPlan{
				dataIndex: []int{0},
				coder:     codec.MustFor(t.Field(0).Type),
			}
			return plan
		}
	}

	consumed := make(map[string]bool)
	for i := range t.NumField() {
		tag := parseTag(t.Field(i).Tag.Get("nop"))
		if tag.bufferWith != "" {
			consumed[tag.bufferWith] = true
		}
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if consumed[f.Name] {
			continue
		}

		tag := parseTag(f.Tag.Get("nop"))
		if tag.bufferWith == "" {
			plan.fields = append(plan.fields, fieldPlan{
				dataIndex: []int{i},
				coder:     codec.MustFor(f.Type),
			})
			continue
		}

		countField, ok := t.FieldByName(tag.bufferWith)
		if !ok {
			panic(fmt.Sprintf("aggregate: %s.%s: buffer count field %q not found", t, f.Name, tag.bufferWith))
		}

		var elemType reflect.Type
		isArray := false
		arrayLen := 0
		switch f.Type.Kind() { //nolint:exhaustive // only slice/array are valid buffer-pair data fields
		case reflect.Slice:
			elemType = f.Type.Elem()
		case reflect.Array:
			elemType = f.Type.Elem()
			isArray = true
			arrayLen = f.Type.Len()
		default:
			panic(fmt.Sprintf("aggregate: %s.%s: buffer-pair data field must be a slice or array", t, f.Name))
		}

		if tag.unbounded && isArray {
			panic(fmt.Sprintf(
				"aggregate: %s.%s: unbounded buffer pair requires a slice field, not a fixed array "+
					"(Go has no analogue to writing past a fixed array's declared bound)", t, f.Name,
			))
		}

		plan.fields = append(plan.fields, fieldPlan{
			dataIndex:  []int{i},
			countIndex: countField.Index,
			coder:      codec.MustFor(elemType),
			unbounded:  tag.unbounded,
			isArray:    isArray,
			arrayLen:   arrayLen,
		})
	}

	return plan
}

func (p *structPlan) Size(v reflect.Value) int {
	if p.isWrapper {
		return p.wrapper.coder.Size(v.Field(p.wrapper.dataIndex[0]))
	}

	size := 1 + sizeOfSize(len(p.fields))
	for _, f := range p.fields {
		size += p.fieldSize(f, v)
	}
	return size
}

func (p *structPlan) fieldSize(f fieldPlan, v reflect.Value) int {
	if f.countIndex == nil {
		return f.coder.Size(v.FieldByIndex(f.dataIndex))
	}

	data := v.FieldByIndex(f.dataIndex)
	count := int(v.FieldByIndex(f.countIndex).Int())
	size := 1 + sizeOfSize(count)
	for i := 0; i < count; i++ {
		size += f.coder.Size(data.Index(i))
	}
	return size
}

func (p *structPlan) Matches(pfx byte) bool {
	if p.isWrapper {
		return p.wrapper.coder.Matches(pfx)
	}
	return pfx == wire.Structure
}

func (p *structPlan) Write(v reflect.Value, w stream.Writer) error {
	if p.isWrapper {
		return p.wrapper.coder.Write(v.Field(p.wrapper.dataIndex[0]), w)
	}

	if err := w.WriteByte(wire.Structure); err != nil {
		return err
	}
	if err := codec.WriteSize(w, len(p.fields)); err != nil {
		return err
	}

	for _, f := range p.fields {
		if err := p.writeField(f, v, w); err != nil {
			return err
		}
	}

	return nil
}

func (p *structPlan) writeField(f fieldPlan, v reflect.Value, w stream.Writer) error {
	if f.countIndex == nil {
		return f.coder.Write(v.FieldByIndex(f.dataIndex), w)
	}

	data := v.FieldByIndex(f.dataIndex)
	count := int(v.FieldByIndex(f.countIndex).Int())

	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := codec.WriteSize(w, count); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := f.coder.Write(data.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (p *structPlan) Read(v reflect.Value, r stream.Reader) error {
	if p.isWrapper {
		return p.wrapper.coder.Read(v.Field(p.wrapper.dataIndex[0]), r)
	}

	pfx, err := r.ReadByte()
	if err != nil {
		return err
	}
	if pfx != wire.Structure {
		return fmt.Errorf("read aggregate: prefix 0x%02x: %w", pfx, errs.ErrBadFormat)
	}

	m, err := codec.ReadSize(r)
	if err != nil {
		return err
	}
	if m != len(p.fields) {
		return fmt.Errorf("read aggregate %s: got %d members, want %d: %w", p.typ, m, len(p.fields), errs.ErrInvalidMemberCount)
	}

	for _, f := range p.fields {
		if err := p.readField(f, v, r); err != nil {
			return err
		}
	}

	return nil
}

func (p *structPlan) readField(f fieldPlan, v reflect.Value, r stream.Reader) error {
	if f.countIndex == nil {
		return f.coder.Read(v.FieldByIndex(f.dataIndex), r)
	}

	pfx, err := r.ReadByte()
	if err != nil {
		return err
	}
	if pfx != wire.Array {
		return fmt.Errorf("read buffer pair: prefix 0x%02x: %w", pfx, errs.ErrBadFormat)
	}

	n, err := codec.ReadSize(r)
	if err != nil {
		return err
	}

	data := v.FieldByIndex(f.dataIndex)

	if f.isArray {
		if n > f.arrayLen {
			return fmt.Errorf(
				"read buffer pair: wire count %d exceeds backing capacity %d: %w",
				n, f.arrayLen, errs.ErrInvalidContainerLength,
			)
		}
		for i := 0; i < n; i++ {
			if err := f.coder.Read(data.Index(i), r); err != nil {
				return err
			}
		}
	} else {
		out := reflect.MakeSlice(data.Type(), n, n)
		for i := 0; i < n; i++ {
			if err := f.coder.Read(out.Index(i), r); err != nil {
				return err
			}
		}
		data.Set(out)
	}

	v.FieldByIndex(f.countIndex).SetInt(int64(n))
	return nil
}

func sizeOfSize(n int) int { return codec.SizeOfSize(n) }

// looksLikeSpecialCased reports whether t has the field shape of
// sumtype.Optional, sumtype.Result, or handle.Handle. Those are plain
// structs from reflect's point of view, so without this check the catch-all
// below would claim them as ordinary aggregates before the sumtype/handle
// packages' own fallbacks (registered separately, order-independent of this
// one) ever get a turn.
func looksLikeSpecialCased(t reflect.Type) bool {
	switch t.NumField() {
	case 2:
		if t.Field(0).Name == "Valid" && t.Field(0).Type.Kind() == reflect.Bool && t.Field(1).Name == "Value" {
			return true
		}
		return t.Field(0).Name == "Policy" && t.Field(0).Type.Kind() == reflect.Int32 &&
			t.Field(1).Name == "Reference" && t.Field(1).Type.Kind() == reflect.Int64
	case 3:
		return t.Field(0).Name == "IsError" && t.Field(0).Type.Kind() == reflect.Bool &&
			t.Field(1).Name == "Err" && t.Field(2).Name == "Value"
	default:
		return false
	}
}

func init() {
	codec.RegisterFallback(func(t reflect.Type) (codec.Coder, bool) {
		if t.Kind() != reflect.Struct || looksLikeSpecialCased(t) {
			return nil, false
		}
		return derivePlan(t), true
	})
}
