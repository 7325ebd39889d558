// Package codec implements the wire codec for every primitive and container
// category named in spec §4.1/§4.2: the integer promotion/acceptance rules,
// fixed-width floats, booleans, the single-byte character type, and the
// array/byte-packed/map/tuple/string containers built on top of them.
//
// The "size count" that prefixes every variable-length container (array,
// map, binary, string, structure, table) uses these same unsigned integer
// encoding rules (spec §3).
package codec

import (
	"fmt"

	"github.com/nop-go/nop/endian"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

var le = endian.GetLittleEndianEngine()

// writeUint emits the smallest prefix/payload pair that represents v
// exactly, per spec §4.1's unsigned promotion rule: small-int if v<128,
// else U8/U16/U32/U64 by increasing width.
func writeUint(w stream.Writer, v uint64) error {
	switch {
	case v < 128:
		return w.WriteByte(byte(v))
	case v < 1<<8:
		w.Prepare(2)
		if err := w.WriteByte(wire.U8); err != nil {
			return err
		}
		return w.WriteByte(byte(v))
	case v < 1<<16:
		w.Prepare(3)
		if err := w.WriteByte(wire.U16); err != nil {
			return err
		}
		return w.Write(le.AppendUint16(nil, uint16(v)))
	case v < 1<<32:
		w.Prepare(5)
		if err := w.WriteByte(wire.U32); err != nil {
			return err
		}
		return w.Write(le.AppendUint32(nil, uint32(v)))
	default:
		w.Prepare(9)
		if err := w.WriteByte(wire.U64); err != nil {
			return err
		}
		return w.Write(le.AppendUint64(nil, v))
	}
}

// sizeUint returns the exact number of bytes writeUint(v) would emit.
func sizeUint(v uint64) int {
	switch {
	case v < 128:
		return 1
	case v < 1<<8:
		return 2
	case v < 1<<16:
		return 3
	case v < 1<<32:
		return 5
	default:
		return 9
	}
}

// writeInt emits the smallest prefix/payload pair that represents v exactly,
// per spec §4.1's signed promotion rule: small-int if -32<=v<=127, else
// I8/I16/I32/I64 by increasing width.
func writeInt(w stream.Writer, v int64) error {
	switch {
	case v >= -32 && v <= 127:
		return w.WriteByte(byte(int8(v))) //nolint:gosec // two's complement embedding is intentional
	case v >= -128 && v <= 127:
		w.Prepare(2)
		if err := w.WriteByte(wire.I8); err != nil {
			return err
		}
		return w.WriteByte(byte(int8(v))) //nolint:gosec
	case v >= -32768 && v <= 32767:
		w.Prepare(3)
		if err := w.WriteByte(wire.I16); err != nil {
			return err
		}
		return w.Write(le.AppendUint16(nil, uint16(int16(v)))) //nolint:gosec
	case v >= -(1<<31) && v <= (1<<31)-1:
		w.Prepare(5)
		if err := w.WriteByte(wire.I32); err != nil {
			return err
		}
		return w.Write(le.AppendUint32(nil, uint32(int32(v)))) //nolint:gosec
	default:
		w.Prepare(9)
		if err := w.WriteByte(wire.I64); err != nil {
			return err
		}
		return w.Write(le.AppendUint64(nil, uint64(v)))
	}
}

func sizeInt(v int64) int {
	switch {
	case v >= -32 && v <= 127:
		return 1
	case v >= -128 && v <= 127:
		return 2
	case v >= -32768 && v <= 32767:
		return 3
	case v >= -(1<<31) && v <= (1<<31)-1:
		return 5
	default:
		return 9
	}
}

// readUint reads a prefix-tagged unsigned integer of at most maxBits,
// accepting a positive small-int or any unsigned prefix whose payload
// width is <= maxBits (spec §4.1's acceptance rule).
func readUint(r stream.Reader, maxBits int) (uint64, error) {
	p, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	if wire.IsPosFixInt(p) {
		return uint64(p), nil
	}
	if wire.IsNegFixInt(p) {
		return 0, fmt.Errorf("read uint: negative small-int into unsigned slot: %w", errs.ErrBadFormat)
	}

	var width int
	switch p {
	case wire.U8:
		width = 8
	case wire.U16:
		width = 16
	case wire.U32:
		width = 32
	case wire.U64:
		width = 64
	default:
		return 0, fmt.Errorf("read uint: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	if width > maxBits {
		return 0, fmt.Errorf("read uint: %d-bit prefix into %d-bit slot: %w", width, maxBits, errs.ErrBadFormat)
	}

	buf := make([]byte, width/8)
	if err := r.Read(buf); err != nil {
		return 0, err
	}

	return unpackLE(buf), nil
}

// readInt reads a prefix-tagged signed integer of at most maxBits, accepting
// any small-int (either sign) or a signed prefix whose payload width is
// <= maxBits.
func readInt(r stream.Reader, maxBits int) (int64, error) {
	p, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	if wire.IsPosFixInt(p) {
		return int64(p), nil
	}
	if wire.IsNegFixInt(p) {
		return int64(wire.NegFixIntValue(p)), nil
	}

	var width int
	switch p {
	case wire.I8:
		width = 8
	case wire.I16:
		width = 16
	case wire.I32:
		width = 32
	case wire.I64:
		width = 64
	default:
		return 0, fmt.Errorf("read int: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	if width > maxBits {
		return 0, fmt.Errorf("read int: %d-bit prefix into %d-bit slot: %w", width, maxBits, errs.ErrBadFormat)
	}

	buf := make([]byte, width/8)
	if err := r.Read(buf); err != nil {
		return 0, err
	}
	u := unpackLE(buf)

	// Sign-extend from width bits to 64.
	shift := 64 - width
	return int64(u<<uint(shift)) >> uint(shift), nil
}

// unpackLE reads a 1/2/4/8-byte little-endian unsigned integer using the
// module's shared endian engine rather than a hand-rolled byte loop.
func unpackLE(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(le.Uint16(buf))
	case 4:
		return uint64(le.Uint32(buf))
	default:
		return le.Uint64(buf)
	}
}

// WriteSize writes n as the compact, unsigned "size count" that precedes
// every variable-length container's payload (spec §3).
func WriteSize(w stream.Writer, n int) error {
	if n < 0 {
		return fmt.Errorf("write size: negative length %d: %w", n, errs.ErrInvalidContainerLength)
	}
	return writeUint(w, uint64(n))
}

// SizeOfSize returns the exact byte length WriteSize(n) would emit.
func SizeOfSize(n int) int {
	return sizeUint(uint64(n))
}

// ReadSize reads a compact unsigned size count written by WriteSize.
func ReadSize(r stream.Reader) (int, error) {
	v, err := readUint(r, 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
