package stream

import (
	"fmt"

	"github.com/nop-go/nop/errs"
)

// BoundedWriter wraps an underlying Writer with a fixed byte budget. Every
// write operation checks bytesWritten+n <= budget; exceeding it returns
// ErrWriteLimitReached. This is the mechanism the table codec (spec §4.5)
// uses to pad an entry's payload out to its declared size.
type BoundedWriter struct {
	w       Writer
	budget  int
	written int
}

// NewBoundedWriter wraps w with a budget of at most budget more bytes.
func NewBoundedWriter(w Writer, budget int) *BoundedWriter {
	return &BoundedWriter{w: w, budget: budget}
}

// Written returns the number of bytes written so far.
func (b *BoundedWriter) Written() int { return b.written }

// Remaining returns the unused portion of the budget.
func (b *BoundedWriter) Remaining() int { return b.budget - b.written }

func (b *BoundedWriter) checkBudget(n int) error {
	if b.written+n > b.budget {
		return fmt.Errorf("bounded write of %d bytes exceeds budget of %d: %w", n, b.budget, errs.ErrWriteLimitReached)
	}
	return nil
}

func (b *BoundedWriter) Prepare(n int) { b.w.Prepare(n) }

func (b *BoundedWriter) WriteByte(v byte) error {
	if err := b.checkBudget(1); err != nil {
		return err
	}
	if err := b.w.WriteByte(v); err != nil {
		return err
	}
	b.written++
	return nil
}

func (b *BoundedWriter) Write(p []byte) error {
	if err := b.checkBudget(len(p)); err != nil {
		return err
	}
	if err := b.w.Write(p); err != nil {
		return err
	}
	b.written += len(p)
	return nil
}

func (b *BoundedWriter) Skip(n int, fill byte) error {
	if err := b.checkBudget(n); err != nil {
		return err
	}
	if err := b.w.Skip(n, fill); err != nil {
		return err
	}
	b.written += n
	return nil
}

func (b *BoundedWriter) PushHandle(h int64) (int64, error) {
	return b.w.PushHandle(h)
}

// Pad fills the remainder of the budget with fill. Used by the table codec
// to pad an entry's encoded payload out to its declared size.
func (b *BoundedWriter) Pad(fill byte) error {
	return b.Skip(b.Remaining(), fill)
}

// BoundedReader is the mirror of BoundedWriter: a fixed byte budget over an
// underlying Reader, supporting SkipRemainder to consume an entry's
// unconsumed payload bytes once its logical content has been read.
type BoundedReader struct {
	r      Reader
	budget int
	read   int
}

// NewBoundedReader wraps r, allowing at most budget more bytes to be read
// through this BoundedReader before ErrReadLimitReached is returned.
func NewBoundedReader(r Reader, budget int) *BoundedReader {
	return &BoundedReader{r: r, budget: budget}
}

// Consumed returns the number of bytes read so far.
func (b *BoundedReader) Consumed() int { return b.read }

// Remaining returns the unconsumed portion of the budget.
func (b *BoundedReader) Remaining() int { return b.budget - b.read }

func (b *BoundedReader) checkBudget(n int) error {
	if b.read+n > b.budget {
		return fmt.Errorf("bounded read of %d bytes exceeds budget of %d: %w", n, b.budget, errs.ErrReadLimitReached)
	}
	return nil
}

func (b *BoundedReader) Ensure(n int) bool {
	return b.Remaining() >= n && b.r.Ensure(n)
}

func (b *BoundedReader) ReadByte() (byte, error) {
	if err := b.checkBudget(1); err != nil {
		return 0, err
	}
	v, err := b.r.ReadByte()
	if err != nil {
		return 0, mapShortRead(err)
	}
	b.read++
	return v, nil
}

func (b *BoundedReader) Read(p []byte) error {
	if err := b.checkBudget(len(p)); err != nil {
		return err
	}
	if err := b.r.Read(p); err != nil {
		return mapShortRead(err)
	}
	b.read += len(p)
	return nil
}

func (b *BoundedReader) Skip(n int) error {
	if err := b.checkBudget(n); err != nil {
		return err
	}
	if err := b.r.Skip(n); err != nil {
		return mapShortRead(err)
	}
	b.read += n
	return nil
}

func (b *BoundedReader) GetHandle(ref int64) (int64, error) {
	return b.r.GetHandle(ref)
}

// SkipRemainder consumes whatever bytes are left in the budget without
// interpreting them. The table codec does not use it: it reads each entry's
// whole Binary payload and drops the bytes of a deprecated or unknown entry.
func (b *BoundedReader) SkipRemainder() error {
	return b.Skip(b.Remaining())
}

// mapShortRead turns ErrShortRead surfaced from the wrapped reader into
// ErrReadLimitReached, per spec §7 ("ShortRead ... becomes ReadLimitReached
// when surfaced from a bounded sub-reader").
func mapShortRead(err error) error {
	if err == errs.ErrShortRead {
		return fmt.Errorf("bounded read: %w", errs.ErrReadLimitReached)
	}
	return err
}
