package compress

// ZstdCompressor provides Zstandard compression for wire-encoded payloads.
//
// This compressor is designed for scenarios where compression ratio matters
// more than compression speed, making it a good fit for:
//   - Table entries or handle blobs written once and read many times
//   - Long-term storage of serialized archives
//   - Network transmission where bandwidth is limited
//   - Scenarios where decompression happens infrequently
//
// Performance characteristics:
//   - Compression: ~5-20 ns/byte (depending on compression level)
//   - Decompression: ~2-5 ns/byte
//   - Compression ratio: varies widely with payload redundancy; reserved-size
//     padded fields and repeated struct-shaped entries compress best
//   - Memory usage: Moderate (reuses pooled encoders/decoders)
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
