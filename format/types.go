// Package format defines the small value types shared by the compress
// package and the stream package's optional payload compression (spec §4.9
// expansion): the algorithm a table schema applies to an entry's payload.
// The tag is part of the schema's configuration and is not written to the
// wire.
package format

// CompressionType identifies the algorithm, if any, applied to a binary
// payload before it was framed on the wire.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
