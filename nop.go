// Package nop implements a self-describing, MessagePack-like binary
// serialization format with a type-directed, compile-time codec dispatch
// layer modeled on the object-encoding discipline of Google's libnop C++
// library: value types map to codec types, and aggregate/versioned-table/
// sum-type/handle wire representations are derived once (at init time, not
// per call) and cached.
//
// # Core features
//
//   - Generic Codec[T] interfaces for every wire category (Bool, integers,
//     floats, String, Binary, Array, Map) plus a reflect-based Coder
//     fallback for types only known at runtime (aggregate fields, table
//     entries, RPC arguments)
//   - Struct-tag-driven aggregate derivation (codec, value-wrapper, and
//     logical buffer-pair framing) via the aggregate package
//   - A versioned, skip-tolerant table codec for forward/backward
//     compatible schemas, with optional per-field compression and reserved
//     padding, via the table package
//   - Sum types (Optional, Variant, Result) via the sumtype package
//   - Process-local, policy-tagged handle references via the handle
//     package
//   - Structural equivalence checking between local Go types that must
//     produce byte-identical encodings, via the fungible package
//   - A transport-agnostic RPC method-dispatch layer over SipHash-derived
//     selectors, via the rpc package
//
// # Basic usage
//
// Encoding and decoding a registered type:
//
//	w := stream.NewSliceWriter()
//	defer w.Release()
//	if err := nop.Marshal(int32(42), w); err != nil {
//	    log.Fatal(err)
//	}
//
//	r := stream.NewSliceReader(w.Bytes(), w.Handles())
//	var v int32
//	if err := nop.Unmarshal(&v, r); err != nil {
//	    log.Fatal(err)
//	}
//
// For aggregates, versioned tables, sum types, and RPC interfaces, use the
// aggregate, table, sumtype, and rpc packages directly: this package only
// wraps the common scalar/container round trip.
package nop

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
)

// Marshal encodes v to w using the codec registered for v's type (spec
// §4's type-directed dispatch). v's type must already have a registered
// Codec or a derivable Coder (see codec.Register, codec.RegisterFallback,
// aggregate.Define). bool, the sized integer and float types, string, and
// slices, arrays and maps of registered types resolve automatically; the
// unsized int and uint types have no codec.
func Marshal(v any, w stream.Writer) error {
	rv := reflect.ValueOf(v)
	c, ok := codec.For(rv.Type())
	if !ok {
		return fmt.Errorf("nop: marshal %s: %w", rv.Type(), errs.ErrUnsupportedType)
	}
	return c.Write(rv, w)
}

// Unmarshal decodes from r into dst, which must be a non-nil pointer to a
// registered or derivable type.
func Unmarshal(dst any, r stream.Reader) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("nop: unmarshal: dst must be a non-nil pointer, got %T", dst)
	}
	elem := rv.Elem()
	c, ok := codec.For(elem.Type())
	if !ok {
		return fmt.Errorf("nop: unmarshal %s: %w", elem.Type(), errs.ErrUnsupportedType)
	}
	return c.Read(elem, r)
}

// MarshalToBytes encodes v and returns the resulting bytes, along with any
// handle side channel accumulated during encoding (spec §6.5). The returned
// byte slice is a copy, safe to retain after this call returns.
func MarshalToBytes(v any) ([]byte, []int64, error) {
	w := stream.NewSliceWriter()
	defer w.Release()

	if err := Marshal(v, w); err != nil {
		return nil, nil, err
	}

	out := append([]byte(nil), w.Bytes()...)
	return out, w.Handles(), nil
}

// UnmarshalFromBytes decodes data (with its handle side channel, if any)
// into dst.
func UnmarshalFromBytes(dst any, data []byte, handles []int64) error {
	r := stream.NewSliceReader(data, handles)
	return Unmarshal(dst, r)
}
