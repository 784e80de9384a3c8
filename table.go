package spatialhash

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spatialhash/internal/conv"
	"github.com/hupe1980/spatialhash/resource"
)

// slot is one arena cell. Empty slots have occupied == false; their key and
// value are meaningless.
type slot struct {
	key      Key
	value    int
	occupied bool
}

// Table is a fixed-capacity spatial hash table with linear probing.
//
// Table is not safe for concurrent use; see SyncTable.
type Table struct {
	slots []slot
	count int

	// maxProbeDistance is the largest distance from its home bucket at which
	// any key was inserted. It only grows (until Reset), and it bounds every
	// lookup: no key can live further from home than this.
	maxProbeDistance int

	logger      *Logger
	metrics     MetricsCollector
	resources   *resource.Controller
	compression Compression
	arenaBytes  int64
}

// Stats is a point-in-time summary of a table.
type Stats struct {
	Len              int
	Capacity         int
	MaxProbeDistance int
	LoadFactor       float64
}

// New creates an empty table.
//
// Returns ErrInvalidCapacity for a non-positive capacity, or
// resource.ErrMemoryLimitExceeded if the arena does not fit the configured
// resource controller's budget.
func New(optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)

	if o.capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, o.capacity)
	}
	// Snapshots record the capacity as uint32.
	if _, err := conv.IntToUint32(o.capacity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapacity, err)
	}
	if !o.compression.Valid() {
		return nil, fmt.Errorf("spatialhash: unknown compression %d", o.compression)
	}

	arenaBytes := int64(o.capacity) * int64(unsafe.Sizeof(slot{}))
	if err := o.resources.AcquireMemory(arenaBytes); err != nil {
		return nil, fmt.Errorf("spatialhash: reserve %d byte arena: %w", arenaBytes, err)
	}

	return &Table{
		slots:       make([]slot, o.capacity),
		logger:      o.logger,
		metrics:     o.metricsCollector,
		resources:   o.resources,
		compression: o.compression,
		arenaBytes:  arenaBytes,
	}, nil
}

// Close returns the arena reservation to the resource controller.
//
// A closed table is empty: lookups miss, Set fails with ErrClosed, and so do
// snapshot reads and writes. Close is idempotent.
func (t *Table) Close() error {
	if t.slots == nil {
		return nil
	}
	t.resources.ReleaseMemory(t.arenaBytes)
	t.slots = nil
	t.count = 0
	t.maxProbeDistance = 0
	return nil
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int {
	return len(t.slots)
}

// Len returns the number of occupied slots.
func (t *Table) Len() int {
	return t.count
}

// MaxProbeDistance returns the current probe bound.
func (t *Table) MaxProbeDistance() int {
	return t.maxProbeDistance
}

// Stats returns a summary of the table.
func (t *Table) Stats() Stats {
	s := Stats{
		Len:              t.count,
		Capacity:         len(t.slots),
		MaxProbeDistance: t.maxProbeDistance,
	}
	if len(t.slots) > 0 {
		s.LoadFactor = float64(t.count) / float64(len(t.slots))
	}
	return s
}

// closed reports whether Close released the arena. New never builds a table
// without slots.
func (t *Table) closed() bool {
	return len(t.slots) == 0
}

// find probes the home bucket of k and the next maxProbeDistance slots.
// It returns the slot holding k and the number of slots examined.
func (t *Table) find(op string, k Key) (int, int, bool) {
	if t.closed() || !k.Valid() {
		return -1, 0, false
	}

	n := len(t.slots)
	home := Hash(k, n)
	trace := t.logger.tracing()

	for dist := 0; dist <= t.maxProbeDistance; dist++ {
		idx := (home + dist) % n
		if trace {
			t.logger.LogProbe(op, idx, dist)
		}
		s := &t.slots[idx]
		if s.occupied && s.key == k {
			return idx, dist + 1, true
		}
	}
	return -1, t.maxProbeDistance + 1, false
}

// Lookup returns the value stored for (x, y, z) and whether it was found.
func (t *Table) Lookup(x, y, z float64) (int, bool) {
	idx, probes, ok := t.find("get", Key{X: x, Y: y, Z: z})
	t.metrics.RecordGet(probes, ok)
	if !ok {
		return 0, false
	}
	return t.slots[idx].value, true
}

// Get returns the value stored for (x, y, z), or NotFound.
func (t *Table) Get(x, y, z float64) int {
	v, ok := t.Lookup(x, y, z)
	if !ok {
		return NotFound
	}
	return v
}

// Contains reports whether (x, y, z) is present.
func (t *Table) Contains(x, y, z float64) bool {
	_, ok := t.Lookup(x, y, z)
	return ok
}

// Set stores value for (x, y, z).
//
// An existing key is updated in place. Otherwise the key goes into the first
// empty slot at or after its home bucket, wrapping at capacity, and the probe
// bound grows to cover it.
//
// Errors are *InsertError wrapping ErrTableFull when no slot is free,
// ErrReservedValue when value is EmptySentinel or NotFound, ErrInvalidKey
// for keys that are not Valid, and ErrClosed after Close. A failed Set leaves
// the table unchanged.
func (t *Table) Set(x, y, z float64, value int) error {
	k := Key{X: x, Y: y, Z: z}

	if t.closed() {
		return t.fail(k, value, 0, ErrClosed)
	}

	if isReserved(value) {
		return t.fail(k, value, 0, ErrReservedValue)
	}
	if !k.Valid() {
		return t.fail(k, value, 0, ErrInvalidKey)
	}

	if idx, probes, ok := t.find("set", k); ok {
		t.slots[idx].value = value
		if t.logger.tracing() {
			t.logger.LogUpdate(k, idx)
		}
		t.metrics.RecordSet(probes, false, nil)
		return nil
	}

	n := len(t.slots)
	if t.count == n {
		t.logger.LogTableFull(k, n)
		return t.fail(k, value, 0, ErrTableFull)
	}

	home := Hash(k, n)
	trace := t.logger.tracing()

	for dist := 0; dist < n; dist++ {
		idx := (home + dist) % n
		s := &t.slots[idx]
		if !s.occupied {
			s.key, s.value, s.occupied = k, value, true
			t.count++
			if dist > t.maxProbeDistance {
				t.maxProbeDistance = dist
			}
			if trace {
				t.logger.LogEmptySlot(k, idx, dist)
			}
			t.metrics.RecordSet(dist+1, true, nil)
			return nil
		}
		if trace {
			t.logger.LogOccupied(idx, s.value)
		}
	}

	// Only reachable if count drifted from the arena.
	t.logger.LogTableFull(k, n)
	return t.fail(k, value, n, ErrTableFull)
}

func (t *Table) fail(k Key, value, probes int, cause error) error {
	err := &InsertError{Key: k, Value: value, Probes: probes, cause: cause}
	t.metrics.RecordSet(probes, false, err)
	return err
}

// Reset empties every slot and sets the probe bound back to zero.
// The capacity and the arena are kept.
func (t *Table) Reset() {
	clear(t.slots)
	t.count = 0
	t.maxProbeDistance = 0
	t.metrics.RecordReset()
}

// All iterates over the occupied slots in slot order.
// The table must not be modified during iteration.
func (t *Table) All() iter.Seq2[Key, int] {
	return func(yield func(Key, int) bool) {
		for i := range t.slots {
			s := &t.slots[i]
			if s.occupied && !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Range calls fn for each entry in slot order until fn returns false.
func (t *Table) Range(fn func(k Key, value int) bool) {
	for k, v := range t.All() {
		if !fn(k, v) {
			return
		}
	}
}

// Occupied returns the set of occupied slot indices.
func (t *Table) Occupied() *roaring.Bitmap {
	bm := roaring.New()
	for i := range t.slots {
		if t.slots[i].occupied {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// HomeBucket returns the slot (x, y, z) hashes to in this table, or -1 once
// the table is closed.
func (t *Table) HomeBucket(x, y, z float64) int {
	if t.closed() {
		return -1
	}
	return Hash(Key{X: x, Y: y, Z: z}, len(t.slots))
}
