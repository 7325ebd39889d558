package codec

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Coder is the reflect.Value-based counterpart to Codec[T], used wherever a
// type isn't known until runtime: an aggregate's reflected struct field, a
// table schema's declared member type, an RPC argument slot. It is the Go
// analogue of the source library's compile-time member enumeration falling
// back to a uniform runtime-dispatched path once inside a derived type.
type Coder interface {
	Size(v reflect.Value) int
	Matches(p byte) bool
	Write(v reflect.Value, w stream.Writer) error
	Read(v reflect.Value, r stream.Reader) error
}

// genericCoder bridges a compile-time Codec[T] into the reflect-driven Coder
// interface, so primitive codecs can serve both typed call sites (Slice[T],
// Map[K,V]) and reflect-driven ones (aggregate fields) from one
// implementation.
type genericCoder[T any] struct{ codec Codec[T] }

// FromGeneric adapts a Codec[T] for use as a Coder.
func FromGeneric[T any](c Codec[T]) Coder { return genericCoder[T]{codec: c} }

func (g genericCoder[T]) Size(v reflect.Value) int    { return g.codec.Size(v.Interface().(T)) } //nolint:forcetypeassert
func (g genericCoder[T]) Matches(p byte) bool         { return g.codec.Matches(p) }
func (g genericCoder[T]) Write(v reflect.Value, w stream.Writer) error {
	return g.codec.Write(v.Interface().(T), w) //nolint:forcetypeassert
}
func (g genericCoder[T]) Read(v reflect.Value, r stream.Reader) error {
	var t T
	if err := g.codec.Read(&t, r); err != nil {
		return err
	}
	v.Set(reflect.ValueOf(t))
	return nil
}

var registry sync.Map // reflect.Type -> Coder

// fallbacks are consulted, in registration order, when no Coder is directly
// registered and the type's kind doesn't match one of this package's own
// derivation rules (slice, array, map). The aggregate and sumtype packages
// each register a fallback at init time, so a struct or Optional[T]
// encountered while resolving an aggregate's field stays inside this same
// lookup path without codec importing either package.
var (
	fallbacksMu sync.Mutex
	fallbacks   []func(reflect.Type) (Coder, bool)
)

// RegisterFallback adds a resolver consulted by For when no Coder is already
// known for a type and it isn't a slice, array, or map.
func RegisterFallback(f func(reflect.Type) (Coder, bool)) {
	fallbacksMu.Lock()
	defer fallbacksMu.Unlock()
	fallbacks = append(fallbacks, f)
}

// Register installs c as the Coder for T, keyed by its reflect.Type.
func Register[T any](c Codec[T]) {
	registry.Store(reflect.TypeFor[T](), FromGeneric(c))
}

// For resolves a Coder for t, deriving and caching one for slice, array, and
// map kinds on demand, then consulting registered fallbacks.
func For(t reflect.Type) (Coder, bool) {
	if c, ok := registry.Load(t); ok {
		return c.(Coder), true //nolint:forcetypeassert
	}

	if c, ok := derive(t); ok {
		actual, _ := registry.LoadOrStore(t, c)
		return actual.(Coder), true //nolint:forcetypeassert
	}

	fallbacksMu.Lock()
	fns := fallbacks
	fallbacksMu.Unlock()

	for _, f := range fns {
		if c, ok := f(t); ok {
			actual, _ := registry.LoadOrStore(t, c)
			return actual.(Coder), true //nolint:forcetypeassert
		}
	}

	return nil, false
}

// MustFor resolves a Coder for t or panics. Used where the caller has
// already validated the type (e.g. an aggregate derivation that ran once at
// registration time).
func MustFor(t reflect.Type) Coder {
	c, ok := For(t)
	if !ok {
		panic(fmt.Sprintf("codec: no coder for %s", t))
	}
	return c
}

func derive(t reflect.Type) (Coder, bool) {
	switch t.Kind() { //nolint:exhaustive // default falls through to fallbacks
	case reflect.Slice:
		elem, ok := For(t.Elem())
		if !ok {
			return nil, false
		}
		return reflectSliceCoder{elemType: t.Elem(), elem: elem}, true
	case reflect.Array:
		elem, ok := For(t.Elem())
		if !ok {
			return nil, false
		}
		return reflectArrayCoder{elemType: t.Elem(), elem: elem, length: t.Len()}, true
	case reflect.Map:
		key, ok := For(t.Key())
		if !ok {
			return nil, false
		}
		val, ok := For(t.Elem())
		if !ok {
			return nil, false
		}
		return reflectMapCoder{keyType: t.Key(), valType: t.Elem(), key: key, val: val}, true
	default:
		return nil, false
	}
}

// reflectSliceCoder encodes an arbitrary []E as an Array container (spec
// §4.2), dispatching each element through a resolved Coder.
type reflectSliceCoder struct {
	elemType reflect.Type
	elem     Coder
}

func (c reflectSliceCoder) Size(v reflect.Value) int {
	n := v.Len()
	size := SizeOfSize(n)
	for i := 0; i < n; i++ {
		size += c.elem.Size(v.Index(i))
	}
	return 1 + size
}

func (c reflectSliceCoder) Matches(p byte) bool { return p == wire.Array }

func (c reflectSliceCoder) Write(v reflect.Value, w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	n := v.Len()
	if err := WriteSize(w, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := c.elem.Write(v.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (c reflectSliceCoder) Read(v reflect.Value, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Array {
		return fmt.Errorf("read slice: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		if err := c.elem.Read(out.Index(i), r); err != nil {
			return err
		}
	}
	v.Set(out)
	return nil
}

// reflectArrayCoder encodes a fixed-length [N]E the same way, without the
// variance of a slice's backing capacity.
type reflectArrayCoder struct {
	elemType reflect.Type
	elem     Coder
	length   int
}

func (c reflectArrayCoder) Size(v reflect.Value) int {
	size := SizeOfSize(c.length)
	for i := 0; i < c.length; i++ {
		size += c.elem.Size(v.Index(i))
	}
	return 1 + size
}

func (c reflectArrayCoder) Matches(p byte) bool { return p == wire.Array }

func (c reflectArrayCoder) Write(v reflect.Value, w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := WriteSize(w, c.length); err != nil {
		return err
	}
	for i := 0; i < c.length; i++ {
		if err := c.elem.Write(v.Index(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (c reflectArrayCoder) Read(v reflect.Value, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Array {
		return fmt.Errorf("read array: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	if n != c.length {
		return fmt.Errorf("read array: got %d elements, want %d: %w", n, c.length, errs.ErrInvalidContainerLength)
	}
	for i := 0; i < c.length; i++ {
		if err := c.elem.Read(v.Index(i), r); err != nil {
			return err
		}
	}
	return nil
}

// reflectMapCoder encodes an arbitrary map[K]V as a Map container.
type reflectMapCoder struct {
	keyType, valType reflect.Type
	key, val         Coder
}

func (c reflectMapCoder) Size(v reflect.Value) int {
	size := SizeOfSize(v.Len())
	iter := v.MapRange()
	for iter.Next() {
		size += c.key.Size(iter.Key()) + c.val.Size(iter.Value())
	}
	return 1 + size
}

func (c reflectMapCoder) Matches(p byte) bool { return p == wire.Map }

func (c reflectMapCoder) Write(v reflect.Value, w stream.Writer) error {
	if err := w.WriteByte(wire.Map); err != nil {
		return err
	}
	if err := WriteSize(w, v.Len()); err != nil {
		return err
	}
	iter := v.MapRange()
	for iter.Next() {
		if err := c.key.Write(iter.Key(), w); err != nil {
			return err
		}
		if err := c.val.Write(iter.Value(), w); err != nil {
			return err
		}
	}
	return nil
}

func (c reflectMapCoder) Read(v reflect.Value, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Map {
		return fmt.Errorf("read map: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	out := reflect.MakeMapWithSize(v.Type(), n)
	for i := 0; i < n; i++ {
		key := reflect.New(c.keyType).Elem()
		if err := c.key.Read(key, r); err != nil {
			return err
		}
		val := reflect.New(c.valType).Elem()
		if err := c.val.Read(val, r); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	v.Set(out)
	return nil
}

func init() {
	Register[bool](Bool{})
	Register[int8](Int8{})
	Register[int16](Int16{})
	Register[int32](Int32{})
	Register[int64](Int64{})
	Register[uint8](Uint8{})
	Register[uint16](Uint16{})
	Register[uint32](Uint32{})
	Register[uint64](Uint64{})
	Register[float32](Float32{})
	Register[float64](Float64{})
	Register[string](StringCodec{})
	Register[Char](CharCodec{})
}
