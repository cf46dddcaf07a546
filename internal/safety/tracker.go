package safety

import (
	"time"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
)

// staleResultAge is how long an unhandled error result may live before a
// CheckUnhandledResults sweep reports it.
const staleResultAge = time.Second

// resultTracker follows one Result value from creation to handling.
type resultTracker struct {
	id        uint64
	isErr     bool
	handled   bool
	createdAt time.Time
	handledAt time.Time
	created   Location
	handledBy Location
}

// ResultTrackerInfo is a read-only snapshot of one tracked result.
type ResultTrackerInfo struct {
	ID        uint64
	IsErr     bool
	Handled   bool
	CreatedAt time.Time
	HandledAt time.Time
}

// TrackResult registers a Result value for unhandled-error detection and
// returns its tracker id. isErr marks error-tagged results; only those are
// reported when they go stale. Returns 0 when error handling aids are off.
func (m *Monitor) TrackResult(isErr bool, loc Location) uint64 {
	if !m.Config().ErrorHandlingAids {
		return 0
	}

	m.trackMu.Lock()
	defer m.trackMu.Unlock()

	m.nextTrack++
	id := m.nextTrack
	m.trackers[id] = &resultTracker{
		id:        id,
		isErr:     isErr,
		createdAt: time.Now(),
		created:   loc,
	}
	return id
}

// MarkHandled records that a tracked result has been consumed.
func (m *Monitor) MarkHandled(id uint64, loc Location) error {
	if !m.Config().ErrorHandlingAids {
		return nil
	}

	m.trackMu.Lock()
	defer m.trackMu.Unlock()

	tracker, ok := m.trackers[id]
	if !ok {
		return errors.NotRegistered(uintptr(id))
	}
	tracker.handled = true
	tracker.handledAt = time.Now()
	tracker.handledBy = loc
	return nil
}

// CheckUnhandledResults sweeps the tracker table and reports a violation for
// every error result that is still unhandled after staleResultAge. Returns
// the number of stale results found.
func (m *Monitor) CheckUnhandledResults() int {
	if !m.Config().ErrorHandlingAids {
		return 0
	}

	type stale struct {
		id  uint64
		loc Location
	}

	m.trackMu.Lock()
	now := time.Now()
	var found []stale
	for id, tracker := range m.trackers {
		if tracker.isErr && !tracker.handled && now.Sub(tracker.createdAt) > staleResultAge {
			found = append(found, stale{id: id, loc: tracker.created})
		}
	}
	m.trackMu.Unlock()

	for _, s := range found {
		m.ReportViolation(ViolationMemorySafety, LevelStandard,
			"unhandled error result detected", s.loc)
	}
	return len(found)
}

// CleanupHandledTrackers drops trackers whose results were handled and
// returns how many were removed.
func (m *Monitor) CleanupHandledTrackers() int {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()

	removed := 0
	for id, tracker := range m.trackers {
		if tracker.handled {
			delete(m.trackers, id)
			removed++
		}
	}
	return removed
}

// ResultTrackerCount reports how many results are currently tracked.
func (m *Monitor) ResultTrackerCount() int {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	return len(m.trackers)
}

// ResultTrackerInfo returns a snapshot of one tracker, if present.
func (m *Monitor) ResultTrackerInfo(id uint64) (ResultTrackerInfo, bool) {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()

	tracker, ok := m.trackers[id]
	if !ok {
		return ResultTrackerInfo{}, false
	}
	return ResultTrackerInfo{
		ID:        tracker.id,
		IsErr:     tracker.isErr,
		Handled:   tracker.handled,
		CreatedAt: tracker.createdAt,
		HandledAt: tracker.handledAt,
	}, true
}
