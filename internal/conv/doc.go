// Package conv provides checked integer conversions for snapshot headers and
// records.
//
// Every function returns an error wrapping ErrOverflow instead of silently
// truncating. Conversions that are safe by construction (loop indices, slot
// numbers below a validated capacity) use plain casts.
package conv
