// Package testutil provides testing utilities for spatialhash.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG for generating points and triangle soups, and
// helpers for finding points that collide in a hash function.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, -10, 10)
//	grid := testutil.GridPoints(16, 16, 16, 0.5)
//
// # Collisions
//
//	pts := testutil.Colliding(2, homeOf, target, candidates)
package testutil
