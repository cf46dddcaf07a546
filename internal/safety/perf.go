package safety

import (
	"sync/atomic"
	"time"
)

// perfCounters accumulates safety-check timing without locks. Min and max
// are updated with CAS loops so concurrent checks never block each other.
type perfCounters struct {
	checksPerformed    atomic.Uint64
	violationsDetected atomic.Uint64
	totalCheckNanos    atomic.Int64
	minCheckNanos      atomic.Int64
	maxCheckNanos      atomic.Int64
}

func (p *perfCounters) reset() {
	p.checksPerformed.Store(0)
	p.violationsDetected.Store(0)
	p.totalCheckNanos.Store(0)
	p.minCheckNanos.Store(0)
	p.maxCheckNanos.Store(0)
}

func (p *perfCounters) record(elapsed time.Duration) {
	nanos := elapsed.Nanoseconds()
	if nanos < 0 {
		nanos = 0
	}
	p.checksPerformed.Add(1)
	p.totalCheckNanos.Add(nanos)

	for {
		cur := p.minCheckNanos.Load()
		if cur != 0 && cur <= nanos {
			break
		}
		if p.minCheckNanos.CompareAndSwap(cur, nanos) {
			break
		}
	}
	for {
		cur := p.maxCheckNanos.Load()
		if cur >= nanos {
			break
		}
		if p.maxCheckNanos.CompareAndSwap(cur, nanos) {
			break
		}
	}
}

// PerformanceMetrics is a point-in-time snapshot of safety-check overhead.
type PerformanceMetrics struct {
	SafetyCheckCount   uint64        `json:"safety_check_count"`
	ViolationsDetected uint64        `json:"violations_detected"`
	TotalCheckTime     time.Duration `json:"total_check_time_ns"`
	MinCheckTime       time.Duration `json:"min_check_time_ns"`
	MaxCheckTime       time.Duration `json:"max_check_time_ns"`
	AverageCheckTime   time.Duration `json:"average_check_time_ns"`
}

// StartPerformanceMeasurement opens a timing window for one safety check.
// Returns the zero time when performance monitoring is off; pass the result
// to EndPerformanceMeasurement either way.
func (m *Monitor) StartPerformanceMeasurement() time.Time {
	if !m.Config().PerformanceMonitoring {
		return time.Time{}
	}
	return time.Now()
}

// EndPerformanceMeasurement closes a timing window opened by
// StartPerformanceMeasurement and folds the elapsed time into the metrics.
func (m *Monitor) EndPerformanceMeasurement(start time.Time) {
	if start.IsZero() || !m.Config().PerformanceMonitoring {
		return
	}
	m.perf.record(time.Since(start))
}

// PerformanceMetrics returns the accumulated safety-check metrics.
func (m *Monitor) PerformanceMetrics() PerformanceMetrics {
	count := m.perf.checksPerformed.Load()
	total := m.perf.totalCheckNanos.Load()

	snap := PerformanceMetrics{
		SafetyCheckCount:   count,
		ViolationsDetected: m.perf.violationsDetected.Load(),
		TotalCheckTime:     time.Duration(total),
		MinCheckTime:       time.Duration(m.perf.minCheckNanos.Load()),
		MaxCheckTime:       time.Duration(m.perf.maxCheckNanos.Load()),
	}
	if count > 0 {
		snap.AverageCheckTime = time.Duration(total / int64(count))
	}
	return snap
}

// ResetPerformanceMetrics zeroes all timing counters.
func (m *Monitor) ResetPerformanceMetrics() {
	m.perf.reset()
}
