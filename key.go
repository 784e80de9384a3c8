package spatialhash

import (
	"fmt"
	"strconv"
)

const (
	// Capacity is the default number of slots.
	Capacity = 4410

	// EmptySentinel is the value historically used to mark an empty slot.
	// Slots track occupancy themselves; the value stays reserved and is
	// rejected by Set.
	EmptySentinel = -1

	// NotFound is returned by Get for an absent key. It is reserved and
	// rejected by Set.
	NotFound = -2
)

// Hash multipliers, one per axis.
const (
	XMultiplier = 73856093
	YMultiplier = 19349663
	ZMultiplier = 8349271
)

// maxScaled is 2^63; a scaled coordinate must lie strictly inside ±maxScaled
// to convert to int64 without overflow.
const maxScaled = float64(1 << 63)

// Key is a point in space. Two keys are equal iff all three components are
// equal under IEEE comparison: no tolerance, and NaN never equals anything.
type Key struct {
	X, Y, Z float64
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("(%s, %s, %s)",
		strconv.FormatFloat(k.X, 'g', -1, 64),
		strconv.FormatFloat(k.Y, 'g', -1, 64),
		strconv.FormatFloat(k.Z, 'g', -1, 64),
	)
}

// Valid reports whether k can be hashed: every component is finite and its
// scaled value fits in an int64.
func (k Key) Valid() bool {
	return inRange(k.X*XMultiplier) && inRange(k.Y*YMultiplier) && inRange(k.Z*ZMultiplier)
}

func inRange(scaled float64) bool {
	// False for NaN and ±Inf as well.
	return scaled > -maxScaled && scaled < maxScaled
}

// Hash returns the home bucket of k in a table of the given capacity.
//
// Each coordinate is multiplied by its axis constant and truncated toward
// zero; the three integers are XORed and reduced with a floored modulo into
// [0, capacity). Truncation makes bucketing coarse: coordinates that differ
// only below the multiplier's resolution share a bucket.
//
// capacity must be positive. The result is unspecified for keys that are not
// Valid.
func Hash(k Key, capacity int) int {
	h := int64(k.X*XMultiplier) ^ int64(k.Y*YMultiplier) ^ int64(k.Z*ZMultiplier)
	idx := h % int64(capacity)
	if idx < 0 {
		idx += int64(capacity)
	}
	return int(idx)
}

// isReserved reports whether v collides with a sentinel.
func isReserved(v int) bool {
	return v == EmptySentinel || v == NotFound
}
