package memory

import "sync/atomic"

// Stats is a read-only snapshot of the manager's counters. Field names feed
// the debug endpoints, so the JSON tags are stable.
type Stats struct {
	TotalAllocations   uint64 `json:"total_allocations"`
	TotalFrees         uint64 `json:"total_frees"`
	CurrentAllocations int64  `json:"current_allocations"`
	PeakAllocations    int64  `json:"peak_allocations"`
	BytesAllocated     uint64 `json:"bytes_allocated"`
	BytesFreed         uint64 `json:"bytes_freed"`
	CurrentBytes       int64  `json:"current_bytes"`
	PeakBytes          int64  `json:"peak_bytes"`
	SliceCount         int64  `json:"slice_count"`
	StringCount        int64  `json:"string_count"`
	ResultCount        int64  `json:"result_count"`
}

// counters hold the live statistics. Every field updates atomically so hot
// allocation paths never take the registry lock for accounting.
type counters struct {
	totalAllocations   atomic.Uint64
	totalFrees         atomic.Uint64
	currentAllocations atomic.Int64
	peakAllocations    atomic.Int64
	bytesAllocated     atomic.Uint64
	bytesFreed         atomic.Uint64
	currentBytes       atomic.Int64
	peakBytes          atomic.Int64
	sliceCount         atomic.Int64
	stringCount        atomic.Int64
	resultCount        atomic.Int64
}

func (c *counters) recordAlloc(size uintptr) {
	c.totalAllocations.Add(1)
	cur := c.currentAllocations.Add(1)
	storeMax(&c.peakAllocations, cur)
	c.bytesAllocated.Add(uint64(size))
	bytes := c.currentBytes.Add(int64(size))
	storeMax(&c.peakBytes, bytes)
}

func (c *counters) recordFree(size uintptr) {
	c.totalFrees.Add(1)
	c.currentAllocations.Add(-1)
	c.bytesFreed.Add(uint64(size))
	c.currentBytes.Add(-int64(size))
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalAllocations:   c.totalAllocations.Load(),
		TotalFrees:         c.totalFrees.Load(),
		CurrentAllocations: c.currentAllocations.Load(),
		PeakAllocations:    c.peakAllocations.Load(),
		BytesAllocated:     c.bytesAllocated.Load(),
		BytesFreed:         c.bytesFreed.Load(),
		CurrentBytes:       c.currentBytes.Load(),
		PeakBytes:          c.peakBytes.Load(),
		SliceCount:         c.sliceCount.Load(),
		StringCount:        c.stringCount.Load(),
		ResultCount:        c.resultCount.Load(),
	}
}

func (c *counters) reset() {
	c.totalAllocations.Store(0)
	c.totalFrees.Store(0)
	c.currentAllocations.Store(0)
	c.peakAllocations.Store(0)
	c.bytesAllocated.Store(0)
	c.bytesFreed.Store(0)
	c.currentBytes.Store(0)
	c.peakBytes.Store(0)
	c.sliceCount.Store(0)
	c.stringCount.Store(0)
	c.resultCount.Store(0)
}

// storeMax raises max to v if v is larger, tolerating concurrent raisers.
func storeMax(max *atomic.Int64, v int64) {
	for {
		cur := max.Load()
		if v <= cur || max.CompareAndSwap(cur, v) {
			return
		}
	}
}

// addClamped adds delta to ctr, flooring the result at zero. Spurious frees
// of untracked views must not wrap the live-object gauges.
func addClamped(ctr *atomic.Int64, delta int64) {
	for {
		cur := ctr.Load()
		next := cur + delta
		if next < 0 {
			next = 0
		}
		if ctr.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Stats { return m.stats.snapshot() }

// ResetStats zeroes every counter. Blocks stay registered.
func (m *Manager) ResetStats() { m.stats.reset() }

// AddSliceCount adjusts the live fat-pointer slice count. The slice package
// calls this when slice headers are created and destroyed.
func (m *Manager) AddSliceCount(delta int64) { addClamped(&m.stats.sliceCount, delta) }

// AddStringCount adjusts the live string count.
func (m *Manager) AddStringCount(delta int64) { addClamped(&m.stats.stringCount, delta) }

// AddResultCount adjusts the live result count.
func (m *Manager) AddResultCount(delta int64) { addClamped(&m.stats.resultCount, delta) }
