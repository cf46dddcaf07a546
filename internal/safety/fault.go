package safety

import "fmt"

// FaultKind names an operation family fault injection can target.
type FaultKind int32

const (
	FaultAlloc FaultKind = iota
	FaultFFICall
	FaultSliceAccess
	FaultStringOp
	FaultTaskSpawn
	FaultPatternMatch
	FaultTypeCheck
	FaultSecurityCheck
)

const faultKindCount = 8

var faultKindNames = [faultKindCount]string{
	"alloc", "ffi-call", "slice-access", "string-op",
	"task-spawn", "pattern-match", "type-check", "security-check",
}

func (k FaultKind) String() string {
	if k < FaultAlloc || k >= faultKindCount {
		return fmt.Sprintf("fault(%d)", int32(k))
	}
	return faultKindNames[k]
}

// faultSeed starts the injection draw sequence. The generator is a plain
// LCG: faults must be reproducible across runs, so no real randomness.
const faultSeed uint32 = 12345

// faultState holds one fault kind's injection configuration and counters.
type faultState struct {
	enabled       bool
	probability   float64
	injections    uint64
	opportunities uint64
}

// FaultStats is a read-only snapshot of one fault kind's counters.
type FaultStats struct {
	Enabled       bool    `json:"enabled"`
	Probability   float64 `json:"probability"`
	Injections    uint64  `json:"injections"`
	Opportunities uint64  `json:"opportunities"`
}

// EnableFaultInjection arms one fault kind with an injection probability in
// [0, 1] and resets its counters. Fails when fault injection is disabled in
// the configuration or the arguments are out of range.
func (m *Monitor) EnableFaultInjection(kind FaultKind, probability float64) error {
	if !m.Config().FaultInjection {
		return fmt.Errorf("safety: fault injection is disabled by configuration")
	}
	if kind < FaultAlloc || kind >= faultKindCount {
		return fmt.Errorf("safety: unknown fault kind %d", kind)
	}
	if probability < 0.0 || probability > 1.0 {
		return fmt.Errorf("safety: fault probability %f out of range", probability)
	}

	m.faultMu.Lock()
	m.faults[kind] = faultState{enabled: true, probability: probability}
	m.faultMu.Unlock()
	return nil
}

// DisableFaultInjection disarms one fault kind. Counters survive so tests
// can read them after the run.
func (m *Monitor) DisableFaultInjection(kind FaultKind) error {
	if kind < FaultAlloc || kind >= faultKindCount {
		return fmt.Errorf("safety: unknown fault kind %d", kind)
	}

	m.faultMu.Lock()
	m.faults[kind].enabled = false
	m.faultMu.Unlock()
	return nil
}

// ShouldInjectFault draws the deterministic generator and reports whether
// the caller should fail this opportunity. Every call counts as an
// opportunity for the kind, armed or not.
func (m *Monitor) ShouldInjectFault(kind FaultKind) bool {
	if !m.Config().FaultInjection || kind < FaultAlloc || kind >= faultKindCount {
		return false
	}

	m.faultMu.Lock()
	defer m.faultMu.Unlock()

	state := &m.faults[kind]
	state.opportunities++
	if !state.enabled {
		return false
	}

	m.lcg = m.lcg*1103515245 + 12345
	draw := float64(m.lcg%1000000) / 1000000.0

	if draw < state.probability {
		state.injections++
		return true
	}
	return false
}

// RecordFaultInjection counts an injection decided outside ShouldInjectFault.
func (m *Monitor) RecordFaultInjection(kind FaultKind) {
	if !m.Config().FaultInjection || kind < FaultAlloc || kind >= faultKindCount {
		return
	}

	m.faultMu.Lock()
	m.faults[kind].injections++
	m.faultMu.Unlock()
}

// FaultInjectionStats returns one fault kind's counters.
func (m *Monitor) FaultInjectionStats(kind FaultKind) FaultStats {
	if kind < FaultAlloc || kind >= faultKindCount {
		return FaultStats{}
	}

	m.faultMu.Lock()
	defer m.faultMu.Unlock()

	state := m.faults[kind]
	return FaultStats{
		Enabled:       state.enabled,
		Probability:   state.probability,
		Injections:    state.injections,
		Opportunities: state.opportunities,
	}
}
