// Package hash provides the checksum used to guard spatial hash snapshots.
//
// Snapshots carry a CRC32-Castagnoli (CRC32C) of their payload. CRC32C is
// hardware accelerated on x86 (SSE4.2) and ARM (CRC extension), and it is the
// checksum S3 accepts natively, so the same value is reused for upload
// integrity checks.
//
// One-shot:
//
//	sum := hash.CRC32C(payload)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
