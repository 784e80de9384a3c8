// Package blobstore provides the storage abstraction for table snapshots.
//
// A BlobStore holds named, immutable blobs. Snapshots are small (tens to a
// few hundred kilobytes), so writes are whole-object Puts; reads go through a
// Blob handle that supports ranged ReadAt.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, mmap reads, atomic rename writes
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 (package blobstore/s3)
//   - minio.Store: MinIO and other S3-compatible services (package blobstore/minio)
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs must satisfy errors.Is(err, ErrNotFound).
package blobstore
