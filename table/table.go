package table

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/format"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Codec codecs a Go struct of table.Entry[X] fields as a versioned table
// (spec §4.5).
type Codec[T any] struct {
	schema *Schema
}

// NewCodec derives (or reuses) the schema for T and returns its table
// Codec.
func NewCodec[T any](name string, opts ...Option) Codec[T] {
	return Codec[T]{schema: DefineSchema[T](name, opts...)}
}

func (c Codec[T]) Matches(p byte) bool { return p == wire.Table }

// Size estimates the encoded byte length of v. For fields with compression
// disabled (the default) this is exact. A field with compression enabled
// makes this an estimate only, since the compressed length isn't known
// without compressing: callers relying on Size as a strict upper bound
// should leave compression off for those fields.
func (c Codec[T]) Size(v T) int {
	rv := reflect.ValueOf(v)
	size := 1 + (codec.Uint64{}).Size(c.schema.namespaceHash)

	active := 0
	bodySize := 0
	for i := range c.schema.fields {
		f := &c.schema.fields[i]
		entry := rv.FieldByIndex(f.index)
		if !entry.Field(1).Bool() {
			continue
		}
		active++
		n := f.coder.Size(entry.Field(0))
		if f.reserved > n {
			n = f.reserved
		}
		bodySize += (codec.Uint64{}).Size(f.id) + 1 + codec.SizeOfSize(n) + n
	}

	size += codec.SizeOfSize(active) + bodySize
	return size
}

func (c Codec[T]) Write(v T, w stream.Writer) error {
	rv := reflect.ValueOf(v)

	if err := w.WriteByte(wire.Table); err != nil {
		return err
	}
	if err := (codec.Uint64{}).Write(c.schema.namespaceHash, w); err != nil {
		return err
	}

	type activeEntry struct {
		field   *entryField
		payload []byte
	}

	var active []activeEntry
	for i := range c.schema.fields {
		f := &c.schema.fields[i]
		entry := rv.FieldByIndex(f.index)
		if !entry.Field(1).Bool() {
			continue
		}

		payload, err := encodeEntryPayload(f, entry.Field(0))
		if err != nil {
			return fmt.Errorf("table %s: encode entry %d (%s): %w", c.schema.name, f.id, f.name, err)
		}
		active = append(active, activeEntry{field: f, payload: payload})
	}

	if err := codec.WriteSize(w, len(active)); err != nil {
		return err
	}

	for _, e := range active {
		if err := (codec.Uint64{}).Write(e.field.id, w); err != nil {
			return err
		}
		if err := (codec.BinaryCodec{}).Write(e.payload, w); err != nil {
			return err
		}
	}

	return nil
}

func encodeEntryPayload(f *entryField, value reflect.Value) ([]byte, error) {
	sw := stream.NewSliceWriter()
	defer sw.Release()

	target := stream.Writer(sw)
	var bounded *stream.BoundedWriter
	if f.reserved > 0 {
		bounded = stream.NewBoundedWriter(sw, f.reserved)
		target = bounded
	}

	if err := f.coder.Write(value, target); err != nil {
		return nil, err
	}
	if bounded != nil {
		if err := bounded.Pad(TablePaddingByte); err != nil {
			return nil, err
		}
	}

	raw := append([]byte(nil), sw.Bytes()...)

	if f.compression == format.CompressionNone {
		return raw, nil
	}
	return stream.NewCompressingPayload(f.compression, raw)
}

// TablePaddingByte is the fixed byte a schema with reserved-size fields
// pads unused payload tail with (spec §4.5).
const TablePaddingByte byte = 0x5A

func (c Codec[T]) Read(dst *T, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Table {
		return fmt.Errorf("read table %s: prefix 0x%02x: %w", c.schema.name, p, errs.ErrBadFormat)
	}

	var gotHash uint64
	if err := (codec.Uint64{}).Read(&gotHash, r); err != nil {
		return err
	}
	if gotHash != c.schema.namespaceHash {
		return fmt.Errorf("read table %s: namespace hash mismatch: %w", c.schema.name, errs.ErrProtocolError)
	}

	activeCount, err := codec.ReadSize(r)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst).Elem()
	rv.Set(reflect.Zero(rv.Type()))

	seen := make(map[uint64]bool, activeCount)

	for i := 0; i < activeCount; i++ {
		var id uint64
		if err := (codec.Uint64{}).Read(&id, r); err != nil {
			return err
		}

		var payload []byte
		if err := (codec.BinaryCodec{}).Read(&payload, r); err != nil {
			return err
		}

		if seen[id] {
			return fmt.Errorf("read table %s: duplicate entry id %d: %w", c.schema.name, id, errs.ErrProtocolError)
		}
		seen[id] = true

		if c.schema.deprecated[id] {
			continue
		}

		field, ok := c.schema.byID[id]
		if !ok {
			continue // unknown id: silently skipped, per spec §4.5
		}

		if err := decodeEntryPayload(field, payload, rv); err != nil {
			return fmt.Errorf("table %s: decode entry %d (%s): %w", c.schema.name, id, field.name, err)
		}
	}

	return nil
}

func decodeEntryPayload(f *entryField, payload []byte, rv reflect.Value) error {
	raw := payload
	if f.compression != format.CompressionNone {
		decompressed, err := stream.DecompressPayload(f.compression, payload)
		if err != nil {
			return err
		}
		raw = decompressed
	}

	sr := stream.NewSliceReader(raw, nil)
	entry := rv.FieldByIndex(f.index)
	if err := f.coder.Read(entry.Field(0), sr); err != nil {
		return err
	}
	entry.Field(1).SetBool(true)
	return nil
}
