// Package handle implements the opaque resource-reference codec of spec
// §4.6: a Handle on the wire is a policy tag plus an index into a
// side-channel list of raw handle values the writer pushes and the reader
// looks up (stream.Writer.PushHandle / stream.Reader.GetHandle). The actual
// transport of the referenced resource is out of scope, same as spec says.
package handle

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/wire"
)

// Policy identifies which family of resource a Handle's type tag names.
// Mismatching policy on decode is errs.ErrUnexpectedHandleType.
type Policy int32

const (
	// Unique identifies a single-release, non-copyable handle.
	Unique Policy = 0
	// Shared identifies a read-only, duplicable reference handle.
	Shared Policy = 1
	// FD identifies a file-descriptor-like handle whose invalid sentinel
	// value is also -1 at the raw level, distinct from the wire reference
	// sentinel.
	FD Policy = 2
)

// Handle is a typed wire handle bound to one Policy. Reference holds the
// raw handle value: Write pushes it into the writer's side channel and puts
// the returned index on the wire, and Read resolves that index back to the
// raw value. EmptyReference marks "no handle" and is written as is.
type Handle struct {
	Policy    Policy
	Reference int64
}

// EmptyReference mirrors stream.EmptyHandleReference for callers that don't
// want to import stream directly.
const EmptyReference = stream.EmptyHandleReference

// Empty builds an empty handle under the given policy.
func Empty(p Policy) Handle { return Handle{Policy: p, Reference: EmptyReference} }

// IsEmpty reports whether h carries no reference.
func (h Handle) IsEmpty() bool { return h.Reference == EmptyReference }

// Codec codecs a Handle whose wire policy tag must equal Want.
type Codec struct {
	Want Policy
}

func NewCodec(want Policy) Codec { return Codec{Want: want} }

// Size is an upper bound: Write encodes the side-channel index PushHandle
// returns, which is not known before the push, so the reference is counted
// at the widest Int64 encoding (prefix plus 8 bytes).
func (c Codec) Size(v Handle) int {
	return 1 + (codec.Int32{}).Size(int32(v.Policy)) + 9
}

func (Codec) Matches(p byte) bool { return p == wire.Handle }

func (c Codec) Write(v Handle, w stream.Writer) error {
	if err := w.WriteByte(wire.Handle); err != nil {
		return err
	}
	if err := (codec.Int32{}).Write(int32(v.Policy), w); err != nil {
		return err
	}

	ref := v.Reference
	if ref != EmptyReference {
		pushed, err := w.PushHandle(ref)
		if err != nil {
			return err
		}
		ref = pushed
	}

	return (codec.Int64{}).Write(ref, w)
}

func (c Codec) Read(dst *Handle, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Handle {
		return fmt.Errorf("read handle: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	var policy int32
	if err := (codec.Int32{}).Read(&policy, r); err != nil {
		return err
	}
	if Policy(policy) != c.Want {
		return fmt.Errorf("read handle: policy %d, want %d: %w", policy, c.Want, errs.ErrUnexpectedHandleType)
	}

	var ref int64
	if err := (codec.Int64{}).Read(&ref, r); err != nil {
		return err
	}

	if ref == EmptyReference {
		*dst = Handle{Policy: c.Want, Reference: EmptyReference}
		return nil
	}

	resolved, err := r.GetHandle(ref)
	if err != nil {
		return err
	}

	*dst = Handle{Policy: c.Want, Reference: resolved}
	return nil
}

// anyPolicy codecs a Handle field found by reflection (an aggregate field,
// a table entry, an RPC argument) where no Want policy was declared ahead
// of time. It accepts whatever policy tag the wire actually carries instead
// of rejecting a mismatch, since the caller never got a chance to commit to
// one.
type anyPolicy struct{}

func (anyPolicy) Size(v Handle) int { return Codec{Want: v.Policy}.Size(v) }

func (anyPolicy) Matches(p byte) bool { return p == wire.Handle }

func (anyPolicy) Write(v Handle, w stream.Writer) error { return Codec{Want: v.Policy}.Write(v, w) }

func (anyPolicy) Read(dst *Handle, r stream.Reader) error {
	p, err := r.ReadByte()
	if err != nil {
		return err
	}
	if p != wire.Handle {
		return fmt.Errorf("read handle: prefix 0x%02x: %w", p, errs.ErrBadFormat)
	}

	var policy int32
	if err := (codec.Int32{}).Read(&policy, r); err != nil {
		return err
	}

	var ref int64
	if err := (codec.Int64{}).Read(&ref, r); err != nil {
		return err
	}

	if ref == EmptyReference {
		*dst = Handle{Policy: Policy(policy), Reference: EmptyReference}
		return nil
	}

	resolved, err := r.GetHandle(ref)
	if err != nil {
		return err
	}

	*dst = Handle{Policy: Policy(policy), Reference: resolved}
	return nil
}

func init() {
	codec.RegisterFallback(func(t reflect.Type) (codec.Coder, bool) {
		if t != reflect.TypeFor[Handle]() {
			return nil, false
		}
		return codec.FromGeneric[Handle](anyPolicy{}), true
	})
}
