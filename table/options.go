package table

import (
	"github.com/nop-go/nop/format"
	"github.com/nop-go/nop/internal/options"
)

type schemaConfig struct {
	deprecated       map[uint64]bool
	compression      format.CompressionType
	fieldCompression map[string]format.CompressionType
	fieldReserved    map[string]int
}

// Option configures a Schema at DefineSchema time, following the same
// functional-options shape the teacher's internal/options package uses to
// configure its numeric encoders.
type Option = options.Option[*schemaConfig]

// WithDeprecated marks entry ids as permanently retired: never emitted, and
// silently skipped if encountered on the wire (spec §4.5).
func WithDeprecated(ids ...uint64) Option {
	return options.NoError(func(c *schemaConfig) {
		for _, id := range ids {
			c.deprecated[id] = true
		}
	})
}

// WithCompression sets the default compression algorithm applied to every
// entry's Binary payload before framing (additive; spec §4.5's expansion).
func WithCompression(kind format.CompressionType) Option {
	return options.NoError(func(c *schemaConfig) {
		c.compression = kind
	})
}

// WithFieldCompression overrides the compression algorithm for one named
// struct field, taking precedence over WithCompression.
func WithFieldCompression(fieldName string, kind format.CompressionType) Option {
	return options.NoError(func(c *schemaConfig) {
		c.fieldCompression[fieldName] = kind
	})
}

// WithFieldReservedSize pre-allocates n bytes for a field's payload, padding
// the tail after the encoded value with the table format's fixed padding
// byte (spec §4.5). A value whose encoding is longer than n bytes fails to
// encode with errs.ErrWriteLimitReached. Used to reserve room for a value
// expected to grow in a future version without shifting subsequent entries.
func WithFieldReservedSize(fieldName string, n int) Option {
	return options.NoError(func(c *schemaConfig) {
		c.fieldReserved[fieldName] = n
	})
}
