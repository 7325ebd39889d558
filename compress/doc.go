// Package compress provides optional compression codecs for wire-encoded
// binary payloads.
//
// The core wire format (spec §3/§4) never requires compression: every
// category that carries a variable-length payload — Binary, String, a table
// entry's wrapped value — is already fully self-describing. This package
// lets the stream package (see stream.NewCompressingPayload) apply a
// general-purpose compressor underneath that framing, entirely opaque to
// the decoder's prefix-byte dispatch: a compressed table entry still decodes
// as a plain Binary payload, it just happens to hold compressed bytes that
// the caller decompresses before re-parsing.
//
// # Supported algorithms
//
//   - None: no compression, for small payloads where the framing overhead of
//     an algorithm header would exceed any savings.
//   - Zstd: best compression ratio, moderate speed; good for cold storage of
//     table snapshots.
//   - S2: balanced compression and speed; good for frequently re-encoded
//     payloads.
//   - LZ4: fastest decompression; good for hot-path RPC replies.
//
// # Usage
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	compressed, _ := codec.Compress(payload)
//	original, _ := codec.Decompress(compressed)
//
// All codec implementations are safe for concurrent use.
package compress
