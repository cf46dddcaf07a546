package memory

import (
	"errors"
	"sync"
	"unsafe"
)

// errAllocFailed is the internal marker for a backend that returned no
// memory. Callers surface it as a nil pointer, never as a safety violation.
var errAllocFailed = errors.New("memory: backend allocation failed")

// CollectorHooks is the allocation SPI consumed from the garbage collector.
// The GC zone delegates here; the collector is otherwise opaque to this
// layer.
type CollectorHooks struct {
	Allocate func(size uintptr) unsafe.Pointer
	Free     func(ptr unsafe.Pointer)
}

// zoneBackend obtains and releases memory for one zone. allocate returns a
// block skeleton with the pointer and whatever pinning state the release
// path needs; the manager fills in zone, ownership, and cleanup metadata.
type zoneBackend interface {
	allocate(size uintptr) (*MemoryBlock, error)
	release(b *MemoryBlock)
}

// heapBackend serves the Manual zone from the plain Go heap. The registry's
// reference to the backing slice keeps the memory reachable until free.
type heapBackend struct{}

func (heapBackend) allocate(size uintptr) (*MemoryBlock, error) {
	buf := make([]byte, size)
	return &MemoryBlock{ptr: unsafe.Pointer(&buf[0]), size: size, backing: buf}, nil
}

func (heapBackend) release(b *MemoryBlock) {
	b.backing = nil
}

// stackBackend serves the Stack zone. Stack-transient allocations crossing
// the FFI boundary cannot live on a real stack frame, so they are heap-backed
// with the same release path as manual memory.
type stackBackend struct{}

func (stackBackend) allocate(size uintptr) (*MemoryBlock, error) {
	buf := make([]byte, size)
	return &MemoryBlock{ptr: unsafe.Pointer(&buf[0]), size: size, backing: buf}, nil
}

func (stackBackend) release(b *MemoryBlock) {
	b.backing = nil
}

// pinnedAlignment keeps pinned buffers cache-line aligned for foreign
// consumers that require stable, aligned addresses.
const pinnedAlignment = 64

// pinnedBackend serves the Pinned zone. Go heap objects do not move while
// referenced, so pinning reduces to holding the backing slice and aligning
// the base address.
type pinnedBackend struct{}

func (pinnedBackend) allocate(size uintptr) (*MemoryBlock, error) {
	buf := make([]byte, size+pinnedAlignment)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	shift := (pinnedAlignment - addr%pinnedAlignment) % pinnedAlignment
	return &MemoryBlock{ptr: unsafe.Pointer(&buf[shift]), size: size, backing: buf}, nil
}

func (pinnedBackend) release(b *MemoryBlock) {
	b.backing = nil
}

// gcBackend serves the GC zone by delegating to the collector hooks.
type gcBackend struct {
	hooks CollectorHooks
}

func (g *gcBackend) allocate(size uintptr) (*MemoryBlock, error) {
	ptr := g.hooks.Allocate(size)
	if ptr == nil {
		return nil, errAllocFailed
	}
	return &MemoryBlock{ptr: ptr, size: size}, nil
}

func (g *gcBackend) release(b *MemoryBlock) {
	g.hooks.Free(b.ptr)
}

// secureBackend serves the Secure zone with page-locked memory when the
// platform provides it, falling back to the heap otherwise. Either way the
// block is zeroed before release.
type secureBackend struct{}

func (secureBackend) allocate(size uintptr) (*MemoryBlock, error) {
	if buf, locked, err := mapLocked(size); err == nil {
		return &MemoryBlock{
			ptr:      unsafe.Pointer(&buf[0]),
			size:     size,
			mapped:   buf,
			locked:   locked,
			isSecure: true,
		}, nil
	}
	buf := make([]byte, size)
	return &MemoryBlock{ptr: unsafe.Pointer(&buf[0]), size: size, backing: buf, isSecure: true}, nil
}

func (secureBackend) release(b *MemoryBlock) {
	wipe(b.ptr, b.size)
	if b.mapped != nil {
		unmapLocked(b.mapped, b.locked)
		b.mapped = nil
	}
	b.backing = nil
}

// defaultCollector backs the GC zone when no real collector is wired in. It
// mirrors the heap path but keeps its own pin table because hook-allocated
// memory bypasses the registry's backing field.
type defaultCollector struct {
	mu   sync.Mutex
	pins map[unsafe.Pointer][]byte
}

func newDefaultCollector() *defaultCollector {
	return &defaultCollector{pins: make(map[unsafe.Pointer][]byte)}
}

func (c *defaultCollector) hooks() CollectorHooks {
	return CollectorHooks{Allocate: c.allocate, Free: c.free}
}

func (c *defaultCollector) allocate(size uintptr) unsafe.Pointer {
	buf := make([]byte, size)
	ptr := unsafe.Pointer(&buf[0])

	c.mu.Lock()
	c.pins[ptr] = buf
	c.mu.Unlock()

	return ptr
}

func (c *defaultCollector) free(ptr unsafe.Pointer) {
	c.mu.Lock()
	delete(c.pins, ptr)
	c.mu.Unlock()
}
