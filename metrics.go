package spatialhash

import "sync/atomic"

// MetricsCollector receives per-operation table metrics.
// Implement it to export to a monitoring system such as Prometheus.
//
// Collectors are called synchronously from Get and Set, so they must be cheap.
// A collector shared by several SyncTables must be safe for concurrent use.
type MetricsCollector interface {
	// RecordGet is called after each Get or Lookup with the number of slots
	// examined and whether the key was found.
	RecordGet(probes int, found bool)

	// RecordSet is called after each Set. inserted is false for in-place
	// updates and for failures; err is nil on success.
	RecordSet(probes int, inserted bool, err error)

	// RecordReset is called after each Reset.
	RecordReset()
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGet(int, bool)        {}
func (NoopMetricsCollector) RecordSet(int, bool, error) {}
func (NoopMetricsCollector) RecordReset()               {}

// BasicMetricsCollector keeps in-memory counters.
// Useful for tuning capacity: a rising probe average means clustering.
type BasicMetricsCollector struct {
	GetCount    atomic.Int64
	GetMisses   atomic.Int64
	GetProbes   atomic.Int64
	SetCount    atomic.Int64
	SetInserts  atomic.Int64
	SetUpdates  atomic.Int64
	SetErrors   atomic.Int64
	SetProbes   atomic.Int64
	ResetCount  atomic.Int64
	MaxSetProbe atomic.Int64
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(probes int, found bool) {
	b.GetCount.Add(1)
	b.GetProbes.Add(int64(probes))
	if !found {
		b.GetMisses.Add(1)
	}
}

// RecordSet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSet(probes int, inserted bool, err error) {
	b.SetCount.Add(1)
	b.SetProbes.Add(int64(probes))

	switch {
	case err != nil:
		b.SetErrors.Add(1)
	case inserted:
		b.SetInserts.Add(1)
	default:
		b.SetUpdates.Add(1)
	}

	for {
		cur := b.MaxSetProbe.Load()
		if int64(probes) <= cur || b.MaxSetProbe.CompareAndSwap(cur, int64(probes)) {
			return
		}
	}
}

// RecordReset implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReset() {
	b.ResetCount.Add(1)
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GetCount:     b.GetCount.Load(),
		GetMisses:    b.GetMisses.Load(),
		GetAvgProbes: avg(b.GetProbes.Load(), b.GetCount.Load()),
		SetCount:     b.SetCount.Load(),
		SetInserts:   b.SetInserts.Load(),
		SetUpdates:   b.SetUpdates.Load(),
		SetErrors:    b.SetErrors.Load(),
		SetAvgProbes: avg(b.SetProbes.Load(), b.SetCount.Load()),
		MaxSetProbe:  b.MaxSetProbe.Load(),
		ResetCount:   b.ResetCount.Load(),
	}
}

func avg(total, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	GetCount     int64
	GetMisses    int64
	GetAvgProbes float64
	SetCount     int64
	SetInserts   int64
	SetUpdates   int64
	SetErrors    int64
	SetAvgProbes float64
	MaxSetProbe  int64
	ResetCount   int64
}
