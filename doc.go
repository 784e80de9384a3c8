// Package spatialhash provides a fixed-capacity hash table keyed by points in
// 3D space, built for deduplicating mesh vertices.
//
// A Table maps (x, y, z) float64 triples to int values. It uses open
// addressing with linear probing over a single arena of slots; it never
// resizes, never rehashes and never deletes individual entries.
//
// # Quick Start
//
//	t, _ := spatialhash.New()
//	_ = t.Set(0, 0, 0, 100)
//	v := t.Get(0, 0, 0)          // 100
//	_, ok := t.Lookup(12, 1, 1)  // ok == false
//
// # Hashing
//
// Each coordinate is scaled by a per-axis constant (XMultiplier, YMultiplier,
// ZMultiplier), truncated toward zero, and the three integers are XORed and
// reduced modulo the capacity. Keys compare with exact IEEE equality, so
// nearly equal points are distinct keys that usually share a home bucket.
//
// # Probe Bound
//
// The table remembers the largest distance from its home bucket at which any
// key was inserted. Lookups stop after that many slots. The bound only grows
// until Reset.
//
// # Sentinels
//
// Get returns NotFound (-2) for absent keys. Lookup returns an explicit found
// flag instead. EmptySentinel (-1) and NotFound are reserved: Set rejects them
// with ErrReservedValue.
//
// # Full Tables
//
// Set on a full table returns an *InsertError wrapping ErrTableFull and
// leaves the table unchanged.
//
// # Snapshots
//
// Tables can be saved to and loaded from any blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./snapshots")
//	_ = spatialhash.Save(ctx, store, "verts.spht", t)
//	_ = spatialhash.Load(ctx, store, "verts.spht", t)
//
// Snapshots record exact slot positions and are validated on load (magic,
// version, CRC32C, capacity, probe invariants).
//
// # Concurrency
//
// Table is not safe for concurrent use. SyncTable wraps one with a RWMutex.
package spatialhash
