// Package fs abstracts the file operations behind atomic blob writes so tests
// can inject failures.
//
//   - [FileSystem]: temp-file creation, rename, remove and mkdir
//   - [OS]: the real file system
//   - [FaultyFS]: a wrapper that fails writes, syncs, closes or renames on
//     matching file names
//
// Reads do not go through this package; they are memory mapped directly.
package fs
