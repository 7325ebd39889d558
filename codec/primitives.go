package codec

import (
	"fmt"
	"math"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Char is a single wire character: a byte treated as unsigned for encoding
// purposes (spec §4.1). ASCII values fall within the small-int range and so
// encode as a single byte, same as any small uint8.
type Char byte

// Bool encodes a boolean as the bare 0x00/0x01 prefix with no payload.
type Bool struct{}

func (Bool) Size(bool) int { return 1 }

func (Bool) Matches(p byte) bool { return p == wire.False || p == wire.True }

func (Bool) Write(v bool, w stream.Writer) error {
	if v {
		return w.WriteByte(wire.True)
	}
	return w.WriteByte(wire.False)
}

func (Bool) Read(dst *bool, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch p {
	case wire.False:
		*dst = false
	case wire.True:
		*dst = true
	default:
		return fmt.Errorf("read bool: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	return nil
}

// Uint8/Uint16/Uint32/Uint64 codec the unsigned integer widths, each
// accepting its own width and every narrower unsigned prefix or positive
// small-int (spec §4.1's acceptance rule).

type Uint8 struct{}

func (Uint8) Size(v uint8) int { return sizeUint(uint64(v)) }
func (Uint8) Matches(p byte) bool {
	return wire.IsPosFixInt(p) || p == wire.U8
}
func (Uint8) Write(v uint8, w stream.Writer) error { return writeUint(w, uint64(v)) }
func (Uint8) Read(dst *uint8, r stream.Reader) error {
	v, err := readUint(r, 8)
	if err != nil {
		return err
	}
	*dst = uint8(v)
	return nil
}

type Uint16 struct{}

func (Uint16) Size(v uint16) int { return sizeUint(uint64(v)) }
func (Uint16) Matches(p byte) bool {
	return wire.IsPosFixInt(p) || p == wire.U8 || p == wire.U16
}
func (Uint16) Write(v uint16, w stream.Writer) error { return writeUint(w, uint64(v)) }
func (Uint16) Read(dst *uint16, r stream.Reader) error {
	v, err := readUint(r, 16)
	if err != nil {
		return err
	}
	*dst = uint16(v)
	return nil
}

type Uint32 struct{}

func (Uint32) Size(v uint32) int { return sizeUint(uint64(v)) }
func (Uint32) Matches(p byte) bool {
	return wire.IsPosFixInt(p) || p == wire.U8 || p == wire.U16 || p == wire.U32
}
func (Uint32) Write(v uint32, w stream.Writer) error { return writeUint(w, uint64(v)) }
func (Uint32) Read(dst *uint32, r stream.Reader) error {
	v, err := readUint(r, 32)
	if err != nil {
		return err
	}
	*dst = uint32(v)
	return nil
}

type Uint64 struct{}

func (Uint64) Size(v uint64) int { return sizeUint(v) }
func (Uint64) Matches(p byte) bool {
	return wire.IsPosFixInt(p) || p == wire.U8 || p == wire.U16 || p == wire.U32 || p == wire.U64
}
func (Uint64) Write(v uint64, w stream.Writer) error { return writeUint(w, v) }
func (Uint64) Read(dst *uint64, r stream.Reader) error {
	v, err := readUint(r, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Int8/Int16/Int32/Int64 codec the signed integer widths, each accepting its
// own width and every narrower signed prefix or either-sign small-int.

type Int8 struct{}

func (Int8) Size(v int8) int { return sizeInt(int64(v)) }
func (Int8) Matches(p byte) bool {
	return wire.IsFixInt(p) || p == wire.I8
}
func (Int8) Write(v int8, w stream.Writer) error { return writeInt(w, int64(v)) }
func (Int8) Read(dst *int8, r stream.Reader) error {
	v, err := readInt(r, 8)
	if err != nil {
		return err
	}
	*dst = int8(v)
	return nil
}

type Int16 struct{}

func (Int16) Size(v int16) int { return sizeInt(int64(v)) }
func (Int16) Matches(p byte) bool {
	return wire.IsFixInt(p) || p == wire.I8 || p == wire.I16
}
func (Int16) Write(v int16, w stream.Writer) error { return writeInt(w, int64(v)) }
func (Int16) Read(dst *int16, r stream.Reader) error {
	v, err := readInt(r, 16)
	if err != nil {
		return err
	}
	*dst = int16(v)
	return nil
}

type Int32 struct{}

func (Int32) Size(v int32) int { return sizeInt(int64(v)) }
func (Int32) Matches(p byte) bool {
	return wire.IsFixInt(p) || p == wire.I8 || p == wire.I16 || p == wire.I32
}
func (Int32) Write(v int32, w stream.Writer) error { return writeInt(w, int64(v)) }
func (Int32) Read(dst *int32, r stream.Reader) error {
	v, err := readInt(r, 32)
	if err != nil {
		return err
	}
	*dst = int32(v)
	return nil
}

type Int64 struct{}

func (Int64) Size(v int64) int { return sizeInt(v) }
func (Int64) Matches(p byte) bool {
	return wire.IsFixInt(p) || p == wire.I8 || p == wire.I16 || p == wire.I32 || p == wire.I64
}
func (Int64) Write(v int64, w stream.Writer) error { return writeInt(w, v) }
func (Int64) Read(dst *int64, r stream.Reader) error {
	v, err := readInt(r, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Float32 codecs a fixed 4-byte IEEE-754 value. Unlike integers, float
// widths never promote: a decoder declared for F32 rejects an F64 payload.
type Float32 struct{}

func (Float32) Size(float32) int { return 5 }
func (Float32) Matches(p byte) bool { return p == wire.F32 }
func (Float32) Write(v float32, w stream.Writer) error {
	w.Prepare(5)
	if err := w.WriteByte(wire.F32); err != nil {
		return err
	}
	return w.Write(le.AppendUint32(nil, math.Float32bits(v)))
}
func (Float32) Read(dst *float32, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.F32 {
		return fmt.Errorf("read float32: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	buf := make([]byte, 4)
	if err := r.Read(buf); err != nil {
		return err
	}
	*dst = math.Float32frombits(le.Uint32(buf))
	return nil
}

// Float64 codecs a fixed 8-byte IEEE-754 value.
type Float64 struct{}

func (Float64) Size(float64) int { return 9 }
func (Float64) Matches(p byte) bool { return p == wire.F64 }
func (Float64) Write(v float64, w stream.Writer) error {
	w.Prepare(9)
	if err := w.WriteByte(wire.F64); err != nil {
		return err
	}
	return w.Write(le.AppendUint64(nil, math.Float64bits(v)))
}
func (Float64) Read(dst *float64, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.F64 {
		return fmt.Errorf("read float64: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}
	buf := make([]byte, 8)
	if err := r.Read(buf); err != nil {
		return err
	}
	*dst = math.Float64frombits(le.Uint64(buf))
	return nil
}

// CharCodec codecs a single Char the same way Uint8 codecs a uint8.
type CharCodec struct{}

func (CharCodec) Size(v Char) int { return sizeUint(uint64(v)) }
func (CharCodec) Matches(p byte) bool {
	return wire.IsPosFixInt(p) || p == wire.U8
}
func (CharCodec) Write(v Char, w stream.Writer) error { return writeUint(w, uint64(v)) }
func (CharCodec) Read(dst *Char, r stream.Reader) error {
	v, err := readUint(r, 8)
	if err != nil {
		return err
	}
	*dst = Char(v)
	return nil
}
