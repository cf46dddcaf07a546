package safety

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

// maxFrameSpan is how far the checking frame may sit from the installing
// frame before the heuristic flags a gross stack overrun. Goroutine stacks
// can move, so the bound is generous.
const maxFrameSpan = 8 << 20

// stackCanary is the per-goroutine sentinel state. The map entry lives on
// the heap; the token handed to the caller lives in its frame, which is what
// an overrun actually corrupts.
type stackCanary struct {
	value     uint64
	frameAddr uintptr
	goroutine uint64
	createdAt time.Time
}

// InstallStackCanary installs a random sentinel for the calling goroutine
// and returns the token the caller should keep in its frame and pass back to
// CheckStackCanary. Installing twice on the same goroutine returns the
// existing token. Returns zero when canaries are disabled.
func (m *Monitor) InstallStackCanary() uint64 {
	if !m.Config().StackCanaries {
		return 0
	}

	gid := goroutineID()
	var anchor byte // approximates the installing frame's address

	m.canaryMu.Lock()
	defer m.canaryMu.Unlock()

	if existing, ok := m.canaries[gid]; ok {
		return existing.value
	}

	c := &stackCanary{
		value:     generateCanaryValue(),
		frameAddr: uintptr(unsafe.Pointer(&anchor)),
		goroutine: gid,
		createdAt: time.Now(),
	}
	m.canaries[gid] = c
	return c.value
}

// CheckStackCanary verifies the caller's token against the installed
// sentinel and applies the frame-distance heuristic. Both checks are
// best-effort overrun detection, not a guarantee. A goroutine without an
// installed canary passes; a token mismatch is a security violation.
func (m *Monitor) CheckStackCanary(token uint64) error {
	if !m.Config().StackCanaries {
		return nil
	}

	gid := goroutineID()
	var anchor byte
	here := uintptr(unsafe.Pointer(&anchor))

	m.canaryMu.Lock()
	c, ok := m.canaries[gid]
	m.canaryMu.Unlock()
	if !ok {
		return nil
	}

	if token != c.value {
		msg := fmt.Sprintf("stack canary mismatch on goroutine %d", gid)
		m.ReportViolation(ViolationSecurity, LevelEnhanced, msg, Here("safety/canary.go", 0, "CheckStackCanary"))
		return fmt.Errorf("safety: %s", msg)
	}

	// Frame drift beyond the span bound suggests the check is running far
	// from where the canary was installed. Goroutine stacks move, so this
	// only logs.
	span := here - c.frameAddr
	if c.frameAddr > here {
		span = c.frameAddr - here
	}
	if span > maxFrameSpan {
		m.ReportViolation(ViolationSecurity, LevelBasic,
			fmt.Sprintf("stack frame drifted %d bytes since canary install on goroutine %d", span, gid),
			Here("safety/canary.go", 0, "CheckStackCanary"))
	}
	return nil
}

// RemoveStackCanary discards the calling goroutine's sentinel. Goroutines
// that installed a canary should remove it before exiting; entries left
// behind are dropped at monitor shutdown.
func (m *Monitor) RemoveStackCanary() {
	gid := goroutineID()

	m.canaryMu.Lock()
	delete(m.canaries, gid)
	m.canaryMu.Unlock()
}

// CanaryCount returns the number of goroutines with installed canaries.
func (m *Monitor) CanaryCount() int {
	m.canaryMu.Lock()
	defer m.canaryMu.Unlock()
	return len(m.canaries)
}

// generateCanaryValue draws a random sentinel, mixing in time and pid when
// the system randomness source is unavailable.
func generateCanaryValue() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err == nil {
		if v := binary.LittleEndian.Uint64(buf[:]); v != 0 {
			return v
		}
	}
	return uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())<<32 ^ goroutineID()
}

// goroutineID extracts the current goroutine's id from the stack header
// ("goroutine 123 [...]"). There is no cheaper supported way to identify a
// goroutine; canary installs are rare enough that the Stack call does not
// matter.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	if n <= 0 {
		return 0
	}
	fields := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
