// Package mmap provides read-only memory-mapped file access for the local
// blob store.
//
// Snapshots are decoded straight from the mapping, avoiding an intermediate
// copy of the file into the Go heap. On platforms without mmap the file is
// read into memory instead, behind the same API.
package mmap
