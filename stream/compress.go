package stream

import (
	"fmt"

	"github.com/nop-go/nop/compress"
	"github.com/nop-go/nop/format"
)

// NewCompressingPayload compresses payload with the algorithm named by kind
// and returns the bytes that should be framed as a Binary container.
//
// This is a SPEC_FULL expansion of spec §4.5/§4.9: the wire format itself
// never requires compression, but a table entry, whose payload is already
// wrapped in an opaque Binary container, can transparently hold compressed
// bytes instead of raw ones, so long as the same algorithm is named when
// decoding (see DecompressPayload).
func NewCompressingPayload(kind format.CompressionType, payload []byte) ([]byte, error) {
	codec, err := compress.GetCodec(kind)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	out, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}

	return out, nil
}

// DecompressPayload reverses NewCompressingPayload.
func DecompressPayload(kind format.CompressionType, payload []byte) ([]byte, error) {
	codec, err := compress.GetCodec(kind)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	out, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	return out, nil
}
