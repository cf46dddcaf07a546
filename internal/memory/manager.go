package memory

import (
	"sync"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/diag"
)

// Manager owns the block registry and the per-zone backends. It is safe for
// concurrent use; the registry lock covers every insert, remove, and lookup
// for its full duration and is never held across a cleanup callback.
type Manager struct {
	mu       sync.Mutex
	blocks   map[unsafe.Pointer]*MemoryBlock
	backends [zoneCount]zoneBackend
	stats    counters
	logger   *diag.Logger
}

// Config carries construction options for a Manager.
type Config struct {
	Collector CollectorHooks
	Logger    *diag.Logger
}

// Option configures a Manager.
type Option func(*Config)

// WithCollector wires the GC zone to a real collector.
func WithCollector(hooks CollectorHooks) Option {
	return func(c *Config) { c.Collector = hooks }
}

// WithLogger routes lifecycle milestones to a specific logger.
func WithLogger(l *diag.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// NewManager builds a Manager with one backend per zone.
func NewManager(options ...Option) *Manager {
	cfg := Config{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.Collector.Allocate == nil || cfg.Collector.Free == nil {
		cfg.Collector = newDefaultCollector().hooks()
	}
	if cfg.Logger == nil {
		cfg.Logger = diag.Default()
	}

	m := &Manager{
		blocks: make(map[unsafe.Pointer]*MemoryBlock),
		logger: cfg.Logger,
	}
	m.backends[ZoneGC] = &gcBackend{hooks: cfg.Collector}
	m.backends[ZoneManual] = heapBackend{}
	m.backends[ZonePinned] = pinnedBackend{}
	m.backends[ZoneStack] = stackBackend{}
	m.backends[ZoneSecure] = secureBackend{}
	return m
}

// Alloc obtains size bytes from the zone's backend and registers the block
// with full ownership. Returns nil when size is zero, the zone is unknown,
// or the backend has no memory; allocation failure is an environment
// condition, never a safety violation.
func (m *Manager) Alloc(size uintptr, zone Zone) unsafe.Pointer {
	return m.allocBlock(size, zone, TransferFull, nil)
}

// AllocZeroed is Alloc plus an explicit wipe. Collector hooks may hand back
// dirty memory, so the wipe is unconditional.
func (m *Manager) AllocZeroed(size uintptr, zone Zone) unsafe.Pointer {
	ptr := m.Alloc(size, zone)
	if ptr != nil {
		wipe(ptr, size)
	}
	return ptr
}

func (m *Manager) allocBlock(size uintptr, zone Zone, ownership OwnershipTransfer, cleanup CleanupFunc) unsafe.Pointer {
	if size == 0 || !zone.valid() {
		return nil
	}

	block, err := m.backends[zone].allocate(size)
	if err != nil || block == nil {
		m.logger.Logf(diag.LevelError, diag.CategoryMemory,
			"allocation of %d bytes in zone %s failed", size, zone)
		return nil
	}
	block.zone = zone
	block.ownership = ownership
	block.cleanup = cleanup

	m.mu.Lock()
	m.blocks[block.ptr] = block
	m.mu.Unlock()

	m.stats.recordAlloc(size)
	return block.ptr
}

// Free releases a tracked allocation. The registered zone decides the
// release strategy; the zone argument is accepted for FFI signature parity
// but the registry wins on mismatch. Freeing an unregistered or nil pointer
// is a silent no-op: foreign callers may legitimately own memory this
// manager never tracked. The cleanup callback runs after the lock is
// released.
func (m *Manager) Free(ptr unsafe.Pointer, zone Zone) {
	if ptr == nil {
		return
	}

	m.mu.Lock()
	block, exists := m.blocks[ptr]
	if !exists {
		m.mu.Unlock()
		return
	}
	delete(m.blocks, ptr)
	m.mu.Unlock()

	m.releaseBlock(block, true)
}

// releaseBlock finishes a free outside the registry lock. External blocks
// were never counted on allocation, so they are not counted here either;
// their cleanup callback is the caller's deallocator.
func (m *Manager) releaseBlock(block *MemoryBlock, runCleanup bool) {
	if runCleanup && block.cleanup != nil {
		block.cleanup(block.ptr)
	}
	if block.external {
		return
	}
	m.backends[block.zone].release(block)
	m.stats.recordFree(block.size)
}

// Realloc moves a tracked allocation to a new size: allocate new, copy the
// smaller of the two sizes, free old. Ownership and cleanup metadata carry
// over to the new block; the old pointer's release skips the cleanup
// callback because the logical object lives on at the new address. Pointer
// identity is not stable across this call. A nil pointer behaves like Alloc,
// a zero newSize like Free, and an unregistered pointer returns nil.
func (m *Manager) Realloc(ptr unsafe.Pointer, newSize uintptr, zone Zone) unsafe.Pointer {
	if ptr == nil {
		return m.Alloc(newSize, zone)
	}
	if newSize == 0 {
		m.Free(ptr, zone)
		return nil
	}
	if !zone.valid() {
		return nil
	}

	m.mu.Lock()
	if _, exists := m.blocks[ptr]; !exists {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	// Allocate outside the lock: collector hooks are callbacks and must not
	// run under it.
	fresh, err := m.backends[zone].allocate(newSize)
	if err != nil || fresh == nil {
		m.logger.Logf(diag.LevelError, diag.CategoryMemory,
			"reallocation to %d bytes in zone %s failed", newSize, zone)
		return nil
	}
	fresh.zone = zone

	m.mu.Lock()
	old, exists := m.blocks[ptr]
	if !exists {
		// Lost a race with a concurrent free of the same pointer.
		m.mu.Unlock()
		m.backends[zone].release(fresh)
		return nil
	}
	fresh.ownership = old.ownership
	fresh.cleanup = old.cleanup

	copySize := old.size
	if newSize < copySize {
		copySize = newSize
	}
	copyMemory(fresh.ptr, old.ptr, copySize)

	delete(m.blocks, ptr)
	m.blocks[fresh.ptr] = fresh
	m.mu.Unlock()

	m.stats.recordAlloc(newSize)
	m.releaseBlock(old, false)
	return fresh.ptr
}

// Lookup returns the tracked block metadata for a pointer, if any.
func (m *Manager) Lookup(ptr unsafe.Pointer) (*MemoryBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	block, exists := m.blocks[ptr]
	return block, exists
}

// BlockCount returns the number of live tracked blocks.
func (m *Manager) BlockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// ValidateBlocks walks the registry and reports the number of corrupt
// entries (nil pointer or zero size). A healthy registry returns 0.
func (m *Manager) ValidateBlocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	invalid := 0
	for _, block := range m.blocks {
		if block.ptr == nil || block.size == 0 {
			invalid++
		}
	}
	return invalid
}

// Shutdown releases every tracked block and clears the registry. Cleanup
// callbacks run after the lock is dropped, in no particular order.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	remaining := make([]*MemoryBlock, 0, len(m.blocks))
	for _, block := range m.blocks {
		remaining = append(remaining, block)
	}
	m.blocks = make(map[unsafe.Pointer]*MemoryBlock)
	m.mu.Unlock()

	if len(remaining) > 0 {
		m.logger.Logf(diag.LevelWarn, diag.CategoryMemory,
			"shutdown released %d outstanding blocks", len(remaining))
	}
	for _, block := range remaining {
		m.releaseBlock(block, true)
	}
}

// copyMemory copies n bytes between raw pointers.
func copyMemory(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 || dst == nil || src == nil {
		return
	}
	dstSlice := (*[1 << 30]byte)(dst)[:n:n]
	srcSlice := (*[1 << 30]byte)(src)[:n:n]
	copy(dstSlice, srcSlice)
}
