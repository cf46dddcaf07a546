package safety

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/asthra-lang/asthra-runtime/internal/diag"
)

// ViolationKind classifies a detected breach of a safety invariant. The
// numeric values appear in the stable violation log line.
type ViolationKind int32

const (
	ViolationGrammar ViolationKind = iota
	ViolationTypeSafety
	ViolationMemorySafety
	ViolationFFISafety
	ViolationConcurrency
	ViolationSecurity
)

const violationKindCount = 6

var violationKindNames = [violationKindCount]string{
	"grammar", "type-safety", "memory-safety", "ffi-safety", "concurrency", "security",
}

func (k ViolationKind) String() string {
	if k < ViolationGrammar || k >= violationKindCount {
		return fmt.Sprintf("violation(%d)", int32(k))
	}
	return violationKindNames[k]
}

// Location pins a violation to its reporting site.
type Location struct {
	File     string
	Line     int
	Function string
}

// Here builds a Location from explicit values; empty strings degrade to
// "unknown" so log lines stay parseable.
func Here(file string, line int, function string) Location {
	if file == "" {
		file = "unknown"
	}
	if function == "" {
		function = "unknown"
	}
	return Location{File: file, Line: line, Function: function}
}

// Monitor is the safety subsystem handle. The configuration, the FFI pointer
// table, and each tracker family have their own lock; violation counters are
// atomic. A Monitor constructed by NewMonitor aborts the process on
// violations at or above the configured threshold unless an abort hook
// overrides that.
type Monitor struct {
	configMu sync.RWMutex
	config   Config

	logger *diag.Logger
	abort  func(kind ViolationKind, message string)

	violationsTotal  atomic.Uint64
	violationsByKind [violationKindCount]atomic.Uint64

	ffiMu    sync.Mutex
	ffiTable map[uintptr]*FFIPointerRecord

	canaryMu sync.Mutex
	canaries map[uint64]*stackCanary

	faultMu sync.Mutex
	faults  [faultKindCount]faultState
	lcg     uint32

	trackMu    sync.Mutex
	trackers   map[uint64]*resultTracker
	nextTrack  uint64
	taskEvents uint64

	perf perfCounters

	callID atomic.Uint64
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithConfig starts the monitor with an explicit configuration instead of
// the debug preset.
func WithConfig(cfg Config) MonitorOption {
	return func(m *Monitor) { m.config = cfg }
}

// WithMonitorLogger routes the monitor's output to a specific logger.
func WithMonitorLogger(l *diag.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// WithAbortHook replaces process termination on a fatal violation. Tests use
// this; production code should leave the default so a broken memory-model
// invariant cannot be papered over.
func WithAbortHook(hook func(kind ViolationKind, message string)) MonitorOption {
	return func(m *Monitor) { m.abort = hook }
}

// NewMonitor builds a Monitor. Without options it runs the debug preset,
// logs to the process-wide logger, and terminates the process on fatal
// violations.
func NewMonitor(options ...MonitorOption) *Monitor {
	m := &Monitor{
		config:   ApplyEnv(DebugConfig()),
		ffiTable: make(map[uintptr]*FFIPointerRecord),
		canaries: make(map[uint64]*stackCanary),
		trackers: make(map[uint64]*resultTracker),
		lcg:      faultSeed,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.logger == nil {
		m.logger = diag.Default()
	}
	if m.abort == nil {
		m.abort = func(kind ViolationKind, message string) {
			m.logger.Logf(diag.LevelFatal, diag.CategorySecurity,
				"aborting on fatal %s violation: %s", kind, message)
			os.Exit(1)
		}
	}
	return m
}

// Config returns a snapshot of the current configuration.
func (m *Monitor) Config() Config {
	m.configMu.RLock()
	defer m.configMu.RUnlock()
	return m.config
}

// SetConfig atomically replaces the configuration. Guarded operations that
// started under the old configuration finish under it.
func (m *Monitor) SetConfig(cfg Config) {
	m.configMu.Lock()
	m.config = cfg
	m.configMu.Unlock()

	m.logger.Logf(diag.LevelInfo, diag.CategorySecurity,
		"safety configuration updated: level=%s", cfg.Level)
}

// ReportViolation records a violation, writes the stable log line, and
// terminates the process when severity reaches the configured threshold.
// The escalation is not interceptable by callers; a threshold of LevelNone
// disables it.
func (m *Monitor) ReportViolation(kind ViolationKind, severity Level, message string, loc Location) {
	m.violationsTotal.Add(1)
	if kind >= ViolationGrammar && kind < violationKindCount {
		m.violationsByKind[kind].Add(1)
	}
	m.perf.violationsDetected.Add(1)

	// Stable line shape; external tooling parses it.
	line := fmt.Sprintf("SAFETY VIOLATION [%d]: %s at %s:%d in %s",
		int32(kind), message, loc.File, loc.Line, loc.Function)
	m.logger.Logf(logLevelFor(severity), diag.CategorySecurity, "%s", line)

	threshold := m.Config().Level
	if threshold != LevelNone && severity >= threshold {
		m.abort(kind, message)
	}
}

// logLevelFor maps violation severity onto the diagnostic level scale.
func logLevelFor(severity Level) diag.Level {
	switch {
	case severity >= LevelParanoid:
		return diag.LevelFatal
	case severity >= LevelEnhanced:
		return diag.LevelError
	case severity >= LevelStandard:
		return diag.LevelError
	case severity >= LevelBasic:
		return diag.LevelWarn
	default:
		return diag.LevelInfo
	}
}

// ViolationCount returns the total number of violations reported since
// construction or the last shutdown.
func (m *Monitor) ViolationCount() uint64 { return m.violationsTotal.Load() }

// ViolationCountByKind returns the number of violations of one kind.
func (m *Monitor) ViolationCountByKind(kind ViolationKind) uint64 {
	if kind < ViolationGrammar || kind >= violationKindCount {
		return 0
	}
	return m.violationsByKind[kind].Load()
}

// Shutdown clears every counter and table. The configuration survives so a
// monitor can be reused after a reset; Init replaces it anyway.
func (m *Monitor) Shutdown() {
	m.violationsTotal.Store(0)
	for i := range m.violationsByKind {
		m.violationsByKind[i].Store(0)
	}

	m.ffiMu.Lock()
	m.ffiTable = make(map[uintptr]*FFIPointerRecord)
	m.ffiMu.Unlock()

	m.canaryMu.Lock()
	m.canaries = make(map[uint64]*stackCanary)
	m.canaryMu.Unlock()

	m.faultMu.Lock()
	m.faults = [faultKindCount]faultState{}
	m.lcg = faultSeed
	m.faultMu.Unlock()

	m.trackMu.Lock()
	m.trackers = make(map[uint64]*resultTracker)
	m.taskEvents = 0
	m.trackMu.Unlock()

	m.perf.reset()

	m.logger.Logf(diag.LevelInfo, diag.CategorySecurity, "safety monitor shut down")
}

var (
	globalMu      sync.RWMutex
	globalMonitor *Monitor
)

// Init installs the process-wide monitor. Later calls replace the handle.
func Init(options ...MonitorOption) *Monitor {
	m := NewMonitor(options...)

	globalMu.Lock()
	globalMonitor = m
	globalMu.Unlock()

	return m
}

// Global returns the process-wide monitor, constructing a default one on
// first use.
func Global() *Monitor {
	globalMu.RLock()
	m := globalMonitor
	globalMu.RUnlock()
	if m != nil {
		return m
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalMonitor == nil {
		globalMonitor = NewMonitor()
	}
	return globalMonitor
}
