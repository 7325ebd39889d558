package compress

// NoOpCompressor leaves a table entry or handle-blob payload untouched.
// It exists so a schema can declare `format.CompressionNone` through the
// same Codec interface the real algorithms use, rather than special-casing
// "no compression" at every call site.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

func NewNoOpCompressor() NoOpCompressor { return NoOpCompressor{} }

// Compress returns data unchanged; callers must not mutate it afterward,
// since the returned slice aliases the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, mirroring Compress.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
