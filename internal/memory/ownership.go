package memory

import (
	"fmt"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
)

// OwnershipTransfer describes which side of the FFI boundary owns a pointer
// after it crosses.
type OwnershipTransfer int32

const (
	// TransferFull moves ownership: exactly one non-borrowing holder exists
	// at any time and that holder must eventually free the pointer.
	TransferFull OwnershipTransfer = iota
	// TransferBorrowed lends the pointer: the holder must never free it nor
	// outlive the lender's scope.
	TransferBorrowed
	// TransferShared leaves lifetime to an external reference count. The
	// registry tracks the pointer but never adjusts the count itself.
	TransferShared
)

var transferNames = [...]string{"full", "borrowed", "shared"}

func (o OwnershipTransfer) String() string {
	if o < TransferFull || o > TransferShared {
		return fmt.Sprintf("transfer(%d)", int32(o))
	}
	return transferNames[o]
}

// OwnershipInfo is the read-only answer to a registry query.
type OwnershipInfo struct {
	Pointer   unsafe.Pointer
	Size      uintptr
	Zone      Zone
	Ownership OwnershipTransfer
	IsSecure  bool
}

// OwnershipRegistry is the transfer-semantics view over the Manager's block
// table. It shares the table's storage and lock; registration and
// unregistration of the same pointer are linearized.
type OwnershipRegistry struct {
	m *Manager
}

// Ownership returns the transfer-semantics view of the manager.
func (m *Manager) Ownership() *OwnershipRegistry {
	return &OwnershipRegistry{m: m}
}

// Register tracks an externally allocated pointer crossing the boundary.
// The manager never frees such memory itself; the optional cleanup callback
// is the caller's deallocator and runs when the block is freed or the
// registry shuts down with reclaim enabled.
func (r *OwnershipRegistry) Register(ptr unsafe.Pointer, size uintptr, transfer OwnershipTransfer, cleanup CleanupFunc) error {
	if ptr == nil {
		return errors.NullPointer("OwnershipRegistry.Register")
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.blocks[ptr]; exists {
		return errors.AlreadyRegistered(uintptr(ptr))
	}

	r.m.blocks[ptr] = &MemoryBlock{
		ptr:       ptr,
		size:      size,
		zone:      ZoneManual,
		ownership: transfer,
		cleanup:   cleanup,
		external:  true,
	}
	return nil
}

// Unregister stops tracking a pointer without releasing its memory. Unlike
// Free, asking to unregister an unknown pointer is an error: the caller is
// asserting the pointer was registered.
func (r *OwnershipRegistry) Unregister(ptr unsafe.Pointer) error {
	if ptr == nil {
		return errors.NullPointer("OwnershipRegistry.Unregister")
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.blocks[ptr]; !exists {
		return errors.NotRegistered(uintptr(ptr))
	}
	delete(r.m.blocks, ptr)
	return nil
}

// Transfer mutates the block's ownership in place and returns the previous
// value. The underlying memory never moves.
func (r *OwnershipRegistry) Transfer(ptr unsafe.Pointer, newTransfer OwnershipTransfer) (OwnershipTransfer, error) {
	if ptr == nil {
		return TransferFull, errors.NullPointer("OwnershipRegistry.Transfer")
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	block, exists := r.m.blocks[ptr]
	if !exists {
		return TransferFull, errors.NotRegistered(uintptr(ptr))
	}
	old := block.ownership
	block.ownership = newTransfer
	return old, nil
}

// Query returns the current ownership metadata for a tracked pointer.
func (r *OwnershipRegistry) Query(ptr unsafe.Pointer) (OwnershipInfo, error) {
	if ptr == nil {
		return OwnershipInfo{}, errors.NullPointer("OwnershipRegistry.Query")
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	block, exists := r.m.blocks[ptr]
	if !exists {
		return OwnershipInfo{}, errors.NotRegistered(uintptr(ptr))
	}
	return OwnershipInfo{
		Pointer:   block.ptr,
		Size:      block.size,
		Zone:      block.zone,
		Ownership: block.ownership,
		IsSecure:  block.isSecure,
	}, nil
}
