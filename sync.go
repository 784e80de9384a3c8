package spatialhash

import (
	"context"
	"sync"

	"github.com/hupe1980/spatialhash/blobstore"
)

// SyncTable is a Table guarded by a RWMutex.
//
// Lookups take the read lock and may run in parallel; Set, Reset and Load
// take the write lock.
type SyncTable struct {
	mu sync.RWMutex
	t  *Table
}

// NewSyncTable creates an empty synchronized table.
func NewSyncTable(optFns ...Option) (*SyncTable, error) {
	t, err := New(optFns...)
	if err != nil {
		return nil, err
	}
	return &SyncTable{t: t}, nil
}

// Wrap guards an existing table. The caller must not use t directly
// afterwards.
func Wrap(t *Table) *SyncTable {
	return &SyncTable{t: t}
}

// Get returns the value stored for (x, y, z), or NotFound.
func (s *SyncTable) Get(x, y, z float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Get(x, y, z)
}

// Lookup returns the value stored for (x, y, z) and whether it was found.
func (s *SyncTable) Lookup(x, y, z float64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Lookup(x, y, z)
}

// Set stores value for (x, y, z). See Table.Set.
func (s *SyncTable) Set(x, y, z float64, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Set(x, y, z, value)
}

// Reset empties the table.
func (s *SyncTable) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.Reset()
}

// Len returns the number of entries.
func (s *SyncTable) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Len()
}

// Capacity returns the number of slots.
func (s *SyncTable) Capacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Capacity()
}

// MaxProbeDistance returns the current probe bound.
func (s *SyncTable) MaxProbeDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.MaxProbeDistance()
}

// Stats returns a summary of the table.
func (s *SyncTable) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t.Stats()
}

// Range calls fn for each entry under the read lock.
// fn must not call back into s with a write.
func (s *SyncTable) Range(fn func(k Key, value int) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.t.Range(fn)
}

// Save writes a snapshot under the read lock.
func (s *SyncTable) Save(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Save(ctx, store, name, s.t, optFns...)
}

// Load replaces the contents from a snapshot under the write lock.
func (s *SyncTable) Load(ctx context.Context, store blobstore.BlobStore, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Load(ctx, store, name, s.t)
}

// Close releases the table. See Table.Close.
func (s *SyncTable) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Close()
}
