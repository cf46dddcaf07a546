package safety

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/diag"
	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// FFIPointerRecord tracks one pointer registered for cross-boundary
// annotation verification. Records are distinct from the allocator's block
// registry; a pointer may appear in both.
type FFIPointerRecord struct {
	ptr        uintptr
	size       uintptr
	transfer   memory.OwnershipTransfer
	isBorrowed bool
	goroutine  uint64
	refCount   atomic.Int32
	createdAt  time.Time
	lastAccess atomic.Int64 // unix nanoseconds
	site       string
}

// FFIPointerInfo is the read-only answer to a tracker query.
type FFIPointerInfo struct {
	Pointer    unsafe.Pointer
	Size       uintptr
	Transfer   memory.OwnershipTransfer
	IsBorrowed bool
	Goroutine  uint64
	RefCount   int32
	CreatedAt  time.Time
	LastAccess time.Time
	Site       string
}

// RegisterFFIPointer starts tracking a pointer crossing the boundary. The
// site string ("file:line:function") names the call site for diagnostics.
// Registering an already-tracked pointer takes another reference on the
// existing record rather than failing: shared transfers legitimately cross
// more than once. Disabled tracking makes this a no-op.
func (m *Monitor) RegisterFFIPointer(ptr unsafe.Pointer, size uintptr, transfer memory.OwnershipTransfer, isBorrowed bool, site string) error {
	if !m.Config().OwnershipTracking {
		return nil
	}
	if ptr == nil {
		return errors.NullPointer("safety.RegisterFFIPointer")
	}

	now := time.Now()

	m.ffiMu.Lock()
	defer m.ffiMu.Unlock()

	if rec, exists := m.ffiTable[uintptr(ptr)]; exists {
		rec.refCount.Add(1)
		rec.lastAccess.Store(now.UnixNano())
		return nil
	}

	rec := &FFIPointerRecord{
		ptr:        uintptr(ptr),
		size:       size,
		transfer:   transfer,
		isBorrowed: isBorrowed,
		goroutine:  goroutineID(),
		createdAt:  now,
		site:       site,
	}
	rec.refCount.Store(1)
	rec.lastAccess.Store(now.UnixNano())
	m.ffiTable[uintptr(ptr)] = rec
	return nil
}

// UnregisterFFIPointer releases one reference on a tracked pointer and stops
// tracking it when the last reference drops. Unlike the allocator's free
// path, asking to unregister an unknown pointer is itself a violation: it
// indicates a double-release or a pointer that never crossed the boundary.
func (m *Monitor) UnregisterFFIPointer(ptr unsafe.Pointer, loc Location) error {
	if !m.Config().OwnershipTracking || ptr == nil {
		return nil
	}

	m.ffiMu.Lock()
	rec, exists := m.ffiTable[uintptr(ptr)]
	if exists {
		if rec.refCount.Add(-1) <= 0 {
			delete(m.ffiTable, uintptr(ptr))
		}
	}
	m.ffiMu.Unlock()

	if !exists {
		m.ReportViolation(ViolationFFISafety, LevelStandard,
			fmt.Sprintf("attempting to unregister unknown FFI pointer %#x", uintptr(ptr)), loc)
		return errors.NotRegistered(uintptr(ptr))
	}
	return nil
}

// FFIPointerInfo returns the live record for a tracked pointer and marks it
// accessed.
func (m *Monitor) FFIPointerInfo(ptr unsafe.Pointer) (FFIPointerInfo, bool) {
	if !m.Config().OwnershipTracking || ptr == nil {
		return FFIPointerInfo{}, false
	}

	m.ffiMu.Lock()
	defer m.ffiMu.Unlock()

	rec, exists := m.ffiTable[uintptr(ptr)]
	if !exists {
		return FFIPointerInfo{}, false
	}
	rec.lastAccess.Store(time.Now().UnixNano())
	return FFIPointerInfo{
		Pointer:    ptr,
		Size:       rec.size,
		Transfer:   rec.transfer,
		IsBorrowed: rec.isBorrowed,
		Goroutine:  rec.goroutine,
		RefCount:   rec.refCount.Load(),
		CreatedAt:  rec.createdAt,
		LastAccess: time.Unix(0, rec.lastAccess.Load()),
		Site:       rec.site,
	}, true
}

// FFIPointerCount returns the number of live tracked pointers.
func (m *Monitor) FFIPointerCount() int {
	if !m.Config().OwnershipTracking {
		return 0
	}
	m.ffiMu.Lock()
	defer m.ffiMu.Unlock()
	return len(m.ffiTable)
}

// CleanupExpiredFFIPointers drops records not accessed within maxAge and
// returns how many were removed. Long-lived handles should be touched via
// FFIPointerInfo to stay alive.
func (m *Monitor) CleanupExpiredFFIPointers(maxAge time.Duration) int {
	if !m.Config().OwnershipTracking {
		return 0
	}

	cutoff := time.Now().Add(-maxAge).UnixNano()

	m.ffiMu.Lock()
	defer m.ffiMu.Unlock()

	removed := 0
	for ptr, rec := range m.ffiTable {
		if rec.lastAccess.Load() < cutoff {
			delete(m.ffiTable, ptr)
			removed++
		}
	}
	return removed
}

// AnnotationStatus summarizes an annotation verification outcome.
type AnnotationStatus int32

const (
	// AnnotationValid means every argument matched its declared transfer.
	AnnotationValid AnnotationStatus = iota
	// AnnotationMissing means the call site supplied incomplete metadata.
	AnnotationMissing
	// AnnotationLifetimeViolation means an argument's lifetime contract was
	// breached (null with transfer semantics, or a borrowed pointer handed
	// over as a full transfer).
	AnnotationLifetimeViolation
)

// AnnotationCheck reports the verification result for one foreign call.
type AnnotationCheck struct {
	Status     AnnotationStatus
	ParamIndex int
	Message    string
}

// VerifyFFIAnnotation cross-checks each argument of a foreign call against
// the transfer tag and borrow flag its call site declared, and against the
// live pointer record when one exists. A mismatch is reported as a violation
// rather than returned as an error: by the time this check runs the call may
// already be in flight. The front end supplies the expected metadata; this
// layer never infers it.
func (m *Monitor) VerifyFFIAnnotation(function string, args []unsafe.Pointer, transfers []memory.OwnershipTransfer, borrowed []bool, loc Location) AnnotationCheck {
	if !m.Config().AnnotationVerification {
		return AnnotationCheck{Status: AnnotationValid, ParamIndex: -1}
	}

	if len(args) != len(transfers) || len(args) != len(borrowed) {
		check := AnnotationCheck{
			Status:     AnnotationMissing,
			ParamIndex: -1,
			Message: fmt.Sprintf("missing annotation information for %s: %d args, %d transfers, %d borrow flags",
				function, len(args), len(transfers), len(borrowed)),
		}
		m.ReportViolation(ViolationFFISafety, LevelStandard, check.Message, loc)
		return check
	}

	for i, arg := range args {
		if arg == nil && transfers[i] != memory.TransferBorrowed {
			check := AnnotationCheck{
				Status:     AnnotationLifetimeViolation,
				ParamIndex: i,
				Message: fmt.Sprintf("null pointer for parameter %d of %s with %s transfer semantics",
					i, function, transfers[i]),
			}
			m.ReportViolation(ViolationFFISafety, LevelStandard, check.Message, loc)
			return check
		}

		if borrowed[i] && transfers[i] == memory.TransferFull {
			check := AnnotationCheck{
				Status:     AnnotationLifetimeViolation,
				ParamIndex: i,
				Message: fmt.Sprintf("attempting to transfer ownership of borrowed pointer at parameter %d of %s",
					i, function),
			}
			m.ReportViolation(ViolationFFISafety, LevelStandard, check.Message, loc)
			return check
		}

		// Cross-check the declared transfer against the live record.
		if arg != nil {
			if info, tracked := m.FFIPointerInfo(arg); tracked {
				if info.IsBorrowed && transfers[i] == memory.TransferFull {
					check := AnnotationCheck{
						Status:     AnnotationLifetimeViolation,
						ParamIndex: i,
						Message: fmt.Sprintf("parameter %d of %s is tracked as borrowed but declared as full transfer",
							i, function),
					}
					m.ReportViolation(ViolationFFISafety, LevelStandard, check.Message, loc)
					return check
				}
			}
		}
	}

	return AnnotationCheck{Status: AnnotationValid, ParamIndex: -1}
}

// ValidateFFITransfer reports whether handing ptr across the boundary with
// the given transfer is compatible with its live record. Untracked pointers
// fail closed; disabled tracking allows everything.
func (m *Monitor) ValidateFFITransfer(ptr unsafe.Pointer, transfer memory.OwnershipTransfer) bool {
	if !m.Config().OwnershipTracking || ptr == nil {
		return true
	}

	info, tracked := m.FFIPointerInfo(ptr)
	if !tracked {
		return false
	}
	if info.IsBorrowed && transfer == memory.TransferFull {
		return false
	}
	return true
}

// LogFFICall writes one debug line per foreign call when call logging is
// enabled. Call ids are monotonic per monitor.
func (m *Monitor) LogFFICall(function string, args []unsafe.Pointer) {
	if !m.Config().FFICallLogging {
		return
	}

	id := m.callID.Add(1)
	if function == "" {
		function = "unknown"
	}
	m.logger.Logf(diag.LevelDebug, diag.CategoryFFI,
		"FFI call %d: %s with %d arguments", id, function, len(args))
}
