package memory

import "unsafe"

// CleanupFunc runs when the block it is attached to is freed. Cleanup
// callbacks are invoked after the registry lock is released so a callback may
// itself allocate or free.
type CleanupFunc func(unsafe.Pointer)

// MemoryBlock records one live allocation tracked by the Manager. Blocks are
// owned exclusively by the registry and never aliased.
type MemoryBlock struct {
	ptr       unsafe.Pointer
	size      uintptr
	zone      Zone
	ownership OwnershipTransfer
	cleanup   CleanupFunc
	isSecure  bool
	external  bool // registered via OwnershipRegistry, memory not ours

	// backing pins a Go-heap allocation for the life of the block. mapped
	// holds the raw region for mmap-backed secure blocks; locked records
	// whether mlock succeeded on it.
	backing []byte
	mapped  []byte
	locked  bool
}

// Pointer returns the block's base address.
func (b *MemoryBlock) Pointer() unsafe.Pointer { return b.ptr }

// Size returns the block's size in bytes.
func (b *MemoryBlock) Size() uintptr { return b.size }

// Zone returns the zone the block was allocated in.
func (b *MemoryBlock) Zone() Zone { return b.zone }

// Ownership returns the block's current transfer semantics.
func (b *MemoryBlock) Ownership() OwnershipTransfer { return b.ownership }

// IsSecure reports whether the block is zeroed before release.
func (b *MemoryBlock) IsSecure() bool { return b.isSecure }
