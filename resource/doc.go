// Package resource provides shared budgets for spatial hash tables.
//
// A Controller bounds three things across every table that shares it:
//
//   - memory: each table reserves its slot arena on construction
//   - background workers: concurrent batch welding jobs
//   - I/O throughput: snapshot bytes written to or read from blob stores
//
// All methods are safe on a nil *Controller, which means unlimited.
package resource
