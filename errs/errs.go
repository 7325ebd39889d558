// Package errs defines the sentinel errors surfaced by the wire codec, the
// table codec, the handle codec, and the RPC layer.
//
// Call sites wrap these sentinels with additional context using fmt.Errorf's
// %w verb so that errors.Is keeps working across package boundaries, e.g.:
//
//	return fmt.Errorf("decode array: %w", errs.ErrInvalidContainerLength)
package errs

import "errors"

var (
	// ErrShortRead indicates the underlying reader was exhausted before the
	// expected number of bytes could be read.
	ErrShortRead = errors.New("nop: short read")

	// ErrReadLimitReached indicates a bounded reader's budget was exhausted.
	// A ShortRead surfaced from a bounded sub-reader becomes this error.
	ErrReadLimitReached = errors.New("nop: read limit reached")

	// ErrWriteLimitReached indicates a bounded writer's budget was exhausted.
	ErrWriteLimitReached = errors.New("nop: write limit reached")

	// ErrBadFormat indicates a prefix byte was not accepted by the target
	// type's decoder.
	ErrBadFormat = errors.New("nop: bad format")

	// ErrInvalidContainerLength indicates an explicit length in the stream
	// disagreed with the destination's fixed size, or was not divisible by
	// the element size.
	ErrInvalidContainerLength = errors.New("nop: invalid container length")

	// ErrInvalidStringLength indicates a string byte count was not divisible
	// by the character size.
	ErrInvalidStringLength = errors.New("nop: invalid string length")

	// ErrInvalidMemberCount indicates a structure's wire member count did not
	// match the expected count.
	ErrInvalidMemberCount = errors.New("nop: invalid member count")

	// ErrUnexpectedHandleType indicates a handle's wire policy tag did not
	// match the decoder's expected policy.
	ErrUnexpectedHandleType = errors.New("nop: unexpected handle type")

	// ErrUnexpectedVariantType indicates a variant's wire index was out of
	// the declared range.
	ErrUnexpectedVariantType = errors.New("nop: unexpected variant type")

	// ErrInvalidHandleReference indicates a handle index was absent from the
	// reader's side channel.
	ErrInvalidHandleReference = errors.New("nop: invalid handle reference")

	// ErrProtocolError indicates a table duplicate id, namespace hash
	// mismatch, or other framing violation.
	ErrProtocolError = errors.New("nop: protocol error")

	// ErrInvalidInterfaceMethod indicates an RPC selector was not found in
	// the receiver's dispatch table.
	ErrInvalidInterfaceMethod = errors.New("nop: invalid interface method")

	// ErrIO wraps a failure reported by the underlying stream.
	ErrIO = errors.New("nop: io error")

	// ErrNotFungible indicates two local types do not produce identical wire
	// encodings and cannot be substituted at an encoder/decoder boundary.
	ErrNotFungible = errors.New("nop: types are not fungible")

	// ErrDuplicateSelector indicates two methods of the same interface hash
	// to the same RPC selector.
	ErrDuplicateSelector = errors.New("nop: duplicate rpc selector")

	// ErrDuplicateBinding indicates a dispatch table already has a binding
	// registered for a method.
	ErrDuplicateBinding = errors.New("nop: duplicate dispatch binding")

	// ErrDuplicateEntryID indicates a table schema declares the same entry
	// id more than once.
	ErrDuplicateEntryID = errors.New("nop: duplicate table entry id")

	// ErrUnsupportedType indicates the codec registry has no derivable
	// encoding for a requested Go type.
	ErrUnsupportedType = errors.New("nop: unsupported type")
)
