// Package compress wraps LZ4 and ZSTD block compression behind one
// self-describing block format used by table snapshots.
//
//	block, _ := compress.Encode(payload, compress.ZSTD)
//	payload, _ = compress.Decode(block, compress.ZSTD, uint64(len(payload)))
//
// Blocks that do not shrink by at least 10% are stored raw, so Decode must be
// given the same Type that Encode was, but never has to guess whether the
// bytes were actually compressed.
package compress
