package codec

import (
	"fmt"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// StringCodec encodes a Go string as a String container: prefix, byte
// length, raw UTF-8 bytes (spec §4.2).
type StringCodec struct{}

func (StringCodec) Size(v string) int { return 1 + SizeOfSize(len(v)) + len(v) }

func (StringCodec) Matches(p byte) bool { return p == wire.String }

func (StringCodec) Write(v string, w stream.Writer) error {
	w.Prepare(1 + len(v))
	if err := w.WriteByte(wire.String); err != nil {
		return err
	}
	if err := WriteSize(w, len(v)); err != nil {
		return err
	}
	return w.Write([]byte(v))
}

func (StringCodec) Read(dst *string, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.String {
		return fmt.Errorf("read string: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("read string: %w", errs.ErrInvalidStringLength)
	}
	buf := make([]byte, n)
	if err := r.Read(buf); err != nil {
		return err
	}
	*dst = string(buf)
	return nil
}

// BinaryCodec encodes a []byte as an opaque Binary container: prefix, byte
// length, raw bytes. Table entries wrap their payloads in Binary so an
// unrecognized or deprecated entry can be skipped without understanding its
// contents (spec §4.5/§4.9).
type BinaryCodec struct{}

func (BinaryCodec) Size(v []byte) int { return 1 + SizeOfSize(len(v)) + len(v) }

func (BinaryCodec) Matches(p byte) bool { return p == wire.Binary }

func (BinaryCodec) Write(v []byte, w stream.Writer) error {
	w.Prepare(1 + len(v))
	if err := w.WriteByte(wire.Binary); err != nil {
		return err
	}
	if err := WriteSize(w, len(v)); err != nil {
		return err
	}
	return w.Write(v)
}

func (BinaryCodec) Read(dst *[]byte, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Binary {
		return fmt.Errorf("read binary: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("read binary: %w", errs.ErrInvalidContainerLength)
	}
	buf := make([]byte, n)
	if err := r.Read(buf); err != nil {
		return err
	}
	*dst = buf
	return nil
}

// Slice encodes []T as an Array container, dispatching each element through
// an explicit element Codec[T] known at compile time — the direct analogue
// of a template-instantiated vector<T> encoder.
type Slice[T any] struct {
	Elem Codec[T]
}

func NewSlice[T any](elem Codec[T]) Slice[T] { return Slice[T]{Elem: elem} }

func (c Slice[T]) Size(v []T) int {
	size := SizeOfSize(len(v))
	for i := range v {
		size += c.Elem.Size(v[i])
	}
	return 1 + size
}

func (c Slice[T]) Matches(p byte) bool { return p == wire.Array }

func (c Slice[T]) Write(v []T, w stream.Writer) error {
	if err := w.WriteByte(wire.Array); err != nil {
		return err
	}
	if err := WriteSize(w, len(v)); err != nil {
		return err
	}
	for i := range v {
		if err := c.Elem.Write(v[i], w); err != nil {
			return err
		}
	}
	return nil
}

func (c Slice[T]) Read(dst *[]T, r stream.Reader) error {
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
	out := make([]T, n)
	for i := range out {
		if err := c.Elem.Read(&out[i], r); err != nil {
			return err
		}
	}
	*dst = out
	return nil
}

// packable bounds the integral element types PackedSlice may byte-pack.
type packable interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// PackedSlice encodes []T, T an integral type, as a Binary container holding
// the fixed-width little-endian bytes back to back rather than a prefixed
// value per element. Spec §4.2 calls this out as the byte-packed variant:
// same logical sequence as Slice[T], denser on the wire because every
// element shares one width, with no per-element prefix byte.
type PackedSlice[T packable] struct {
	width int // bytes per element
}

// NewPackedSlice builds a PackedSlice for T, inferring the element width
// from a zero value's bit size via the generic parameter.
func NewPackedSlice[T packable]() PackedSlice[T] {
	var z T
	return PackedSlice[T]{width: packedWidth(z)}
}

func packedWidth[T packable](z T) int {
	switch any(z).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32:
		return 4
	default:
		return 8
	}
}

func (c PackedSlice[T]) Size(v []T) int { return 1 + SizeOfSize(len(v)*c.width) + len(v)*c.width }

func (c PackedSlice[T]) Matches(p byte) bool { return p == wire.Binary }

func (c PackedSlice[T]) Write(v []T, w stream.Writer) error {
	if err := w.WriteByte(wire.Binary); err != nil {
		return err
	}
	if err := WriteSize(w, len(v)*c.width); err != nil {
		return err
	}
	buf := make([]byte, len(v)*c.width)
	for i, e := range v {
		putPacked(buf[i*c.width:], e, c.width)
	}
	return w.Write(buf)
}

func (c PackedSlice[T]) Read(dst *[]T, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Binary {
		return fmt.Errorf("read packed slice: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	n, err := ReadSize(r)
	if err != nil {
		return err
	}
	if n%c.width != 0 {
		return fmt.Errorf("read packed slice: length %d not a multiple of width %d: %w", n, c.width, errs.ErrInvalidContainerLength)
	}
	buf := make([]byte, n)
	if err := r.Read(buf); err != nil {
		return err
	}
	out := make([]T, n/c.width)
	for i := range out {
		out[i] = getPacked[T](buf[i*c.width:], c.width)
	}
	*dst = out
	return nil
}

func putPacked[T packable](buf []byte, v T, width int) {
	u := packedToUint64(v)
	switch width {
	case 1:
		buf[0] = byte(u)
	case 2:
		le.PutUint16(buf, uint16(u))
	case 4:
		le.PutUint32(buf, uint32(u))
	default:
		le.PutUint64(buf, u)
	}
}

func getPacked[T packable](buf []byte, width int) T {
	return uint64ToPacked[T](unpackLE(buf[:width]))
}

func packedToUint64[T packable](v T) uint64 {
	switch x := any(v).(type) {
	case int8:
		return uint64(uint8(x))
	case int16:
		return uint64(uint16(x))
	case int32:
		return uint64(uint32(x))
	case int64:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	default:
		panic("codec: unreachable packable type")
	}
}

func uint64ToPacked[T packable](u uint64) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(uint8(u))).(T)   //nolint:forcetypeassert
	case int16:
		return any(int16(uint16(u))).(T) //nolint:forcetypeassert
	case int32:
		return any(int32(uint32(u))).(T) //nolint:forcetypeassert
	case int64:
		return any(int64(u)).(T) //nolint:forcetypeassert
	case uint8:
		return any(uint8(u)).(T) //nolint:forcetypeassert
	case uint16:
		return any(uint16(u)).(T) //nolint:forcetypeassert
	case uint32:
		return any(uint32(u)).(T) //nolint:forcetypeassert
	case uint64:
		return any(u).(T) //nolint:forcetypeassert
	default:
		panic("codec: unreachable packable type")
	}
}

// Map encodes map[K]V as a Map container: prefix, pair count, then each
// key/value pair back to back (spec §4.2). Pairs are written in whatever
// order Go's map range gives, so the output for a map with more than one
// entry is not deterministic; encoding doesn't sort keys.
type Map[K comparable, V any] struct {
	Key Codec[K]
	Val Codec[V]
}

func NewMap[K comparable, V any](key Codec[K], val Codec[V]) Map[K, V] {
	return Map[K, V]{Key: key, Val: val}
}

func (c Map[K, V]) Size(v map[K]V) int {
	size := SizeOfSize(len(v))
	for k, val := range v {
		size += c.Key.Size(k) + c.Val.Size(val)
	}
	return 1 + size
}

func (c Map[K, V]) Matches(p byte) bool { return p == wire.Map }

func (c Map[K, V]) Write(v map[K]V, w stream.Writer) error {
	if err := w.WriteByte(wire.Map); err != nil {
		return err
	}
	if err := WriteSize(w, len(v)); err != nil {
		return err
	}
	for k, val := range v {
		if err := c.Key.Write(k, w); err != nil {
			return err
		}
		if err := c.Val.Write(val, w); err != nil {
			return err
		}
	}
	return nil
}

func (c Map[K, V]) Read(dst *map[K]V, r stream.Reader) error {
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
	out := make(map[K]V, n)
	for i := 0; i < n; i++ {
		var k K
		if err := c.Key.Read(&k, r); err != nil {
			return err
		}
		var val V
		if err := c.Val.Read(&val, r); err != nil {
			return err
		}
		out[k] = val
	}
	*dst = out
	return nil
}
