package stream

import (
	"fmt"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/internal/pool"
)

// SliceWriter is the default in-memory Writer, backed by a pooled,
// amortized-growth byte buffer (internal/pool), the same buffer strategy
// the teacher module uses for its blob encoders.
//
// A SliceWriter is not safe for concurrent use; callers needing concurrency
// should use one SliceWriter per goroutine.
type SliceWriter struct {
	buf     *pool.ByteBuffer
	handles []int64
	large   bool
}

// NewSliceWriter creates a SliceWriter backed by a buffer from the default
// pool, suitable for typical aggregate/table payload sizes.
func NewSliceWriter() *SliceWriter {
	return &SliceWriter{buf: pool.Get()}
}

// NewLargeSliceWriter creates a SliceWriter backed by a buffer from the
// large pool, suitable for bulk table or RPC payloads.
func NewLargeSliceWriter() *SliceWriter {
	return &SliceWriter{buf: pool.GetLarge(), large: true}
}

// Release returns the underlying buffer to its pool. Bytes() must not be
// used after Release.
func (w *SliceWriter) Release() {
	if w.large {
		pool.PutLarge(w.buf)
	} else {
		pool.Put(w.buf)
	}
	w.buf = nil
}

// Bytes returns the bytes written so far. The returned slice is owned by
// the writer's pooled buffer and is only valid until Release is called.
func (w *SliceWriter) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *SliceWriter) Len() int { return w.buf.Len() }

func (w *SliceWriter) Prepare(n int) { w.buf.Grow(n) }

func (w *SliceWriter) WriteByte(b byte) error {
	w.buf.MustWriteByte(b)
	return nil
}

func (w *SliceWriter) Write(p []byte) error {
	w.buf.MustWrite(p)
	return nil
}

func (w *SliceWriter) Skip(n int, fill byte) error {
	if n <= 0 {
		return nil
	}
	w.buf.Grow(n)
	for range n {
		w.buf.MustWriteByte(fill)
	}
	return nil
}

func (w *SliceWriter) PushHandle(h int64) (int64, error) {
	idx := int64(len(w.handles))
	w.handles = append(w.handles, h)
	return idx, nil
}

// Handles returns the handle side channel accumulated during encoding, in
// push order. The caller is responsible for transporting it alongside the
// byte stream (spec §6.5).
func (w *SliceWriter) Handles() []int64 { return w.handles }

// SliceReader is the default in-memory Reader, reading from a fixed byte
// slice and an explicit handle side channel.
type SliceReader struct {
	data    []byte
	pos     int
	handles []int64
}

// NewSliceReader creates a SliceReader over data, with the given handle
// side channel (may be nil if the stream carries no handles).
func NewSliceReader(data []byte, handles []int64) *SliceReader {
	return &SliceReader{data: data, handles: handles}
}

// Pos returns the current read cursor.
func (r *SliceReader) Pos() int { return r.pos }

// Remaining returns the number of unconsumed bytes.
func (r *SliceReader) Remaining() int { return len(r.data) - r.pos }

func (r *SliceReader) Ensure(n int) bool { return r.Remaining() >= n }

func (r *SliceReader) ReadByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, errs.ErrShortRead
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *SliceReader) Read(p []byte) error {
	if r.Remaining() < len(p) {
		return errs.ErrShortRead
	}
	copy(p, r.data[r.pos:r.pos+len(p)])
	r.pos += len(p)
	return nil
}

// ReadN consumes and returns the next n bytes as a sub-slice of the reader's
// backing array (no copy). The returned slice is only valid until the next
// mutation of the source data.
func (r *SliceReader) ReadN(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, errs.ErrShortRead
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *SliceReader) Skip(n int) error {
	if r.Remaining() < n {
		return errs.ErrShortRead
	}
	r.pos += n
	return nil
}

func (r *SliceReader) GetHandle(ref int64) (int64, error) {
	if ref == EmptyHandleReference {
		return 0, fmt.Errorf("get empty handle: %w", errs.ErrInvalidHandleReference)
	}
	if ref < 0 || int(ref) >= len(r.handles) {
		return 0, fmt.Errorf("handle reference %d: %w", ref, errs.ErrInvalidHandleReference)
	}
	return r.handles[ref], nil
}
