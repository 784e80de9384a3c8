package spatialhash

import (
	"errors"
	"fmt"
)

var (
	// ErrTableFull is returned by Set when every slot is occupied.
	ErrTableFull = errors.New("spatialhash: table full")

	// ErrReservedValue is returned by Set for EmptySentinel or NotFound.
	ErrReservedValue = errors.New("spatialhash: reserved value")

	// ErrInvalidKey is returned by Set for NaN or infinite coordinates, or
	// coordinates whose scaled hash component does not fit in an int64.
	ErrInvalidKey = errors.New("spatialhash: invalid key")

	// ErrInvalidCapacity is returned by New for a non-positive capacity.
	ErrInvalidCapacity = errors.New("spatialhash: invalid capacity")

	// ErrCorruptSnapshot is returned when a snapshot fails validation.
	ErrCorruptSnapshot = errors.New("spatialhash: corrupt snapshot")

	// ErrCapacityMismatch is returned when a snapshot was written by a
	// table with a different capacity.
	ErrCapacityMismatch = errors.New("spatialhash: capacity mismatch")

	// ErrClosed is returned by Set and the snapshot codec after Close.
	ErrClosed = errors.New("spatialhash: table closed")
)

// InsertError describes a failed Set.
//
// The underlying sentinel (ErrTableFull, ErrReservedValue or ErrInvalidKey)
// can be matched with errors.Is.
type InsertError struct {
	Key    Key
	Value  int
	Probes int
	cause  error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert %v=%d failed after %d probes: %v", e.Key, e.Value, e.Probes, e.cause)
}

func (e *InsertError) Unwrap() error { return e.cause }

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
}
