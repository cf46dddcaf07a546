// Package slice implements the fat-pointer view types the runtime hands
// across the FFI boundary: bounds-checked slices of foreign or managed
// memory, UTF-8 string buffers, and the variant values used by string
// interpolation. Views never own the registry; allocation and release go
// through an explicit memory manager.
package slice

import (
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// Magic is the integrity sentinel every valid slice header carries
// ("SLIC"). A header without it is uninitialized or corrupted and must be
// rejected before use.
const Magic uint32 = 0x534C4943

// SliceView is a fat pointer: a raw base address plus the metadata needed to
// access it safely. Views are small values, copied freely; the backing
// memory is shared. Every element access is bounds-checked against len
// regardless of the safety configuration; only the optional type-tag layer
// is configurable.
type SliceView struct {
	ptr         unsafe.Pointer
	len         uintptr
	cap         uintptr
	elementSize uintptr
	typeID      uint32
	zone        memory.Zone
	ownership   memory.OwnershipTransfer
	mutable     bool
	magic       uint32
}

// New allocates cap*elementSize bytes in the given zone and returns a fully
// owned, mutable view of the first length elements. Freeing the view
// releases the allocation.
func New(m *memory.Manager, elementSize, length, capacity uintptr, zone memory.Zone) (SliceView, error) {
	if elementSize == 0 {
		return SliceView{}, errors.InvalidArgs("slice.New", "element size is zero")
	}
	if length > capacity {
		return SliceView{}, errors.InvalidArgs("slice.New", "len exceeds cap")
	}
	if capacity == 0 {
		// Empty but valid: no allocation, nothing to free.
		return SliceView{
			elementSize: elementSize,
			zone:        zone,
			ownership:   memory.TransferFull,
			mutable:     true,
			magic:       Magic,
		}, nil
	}

	ptr := m.AllocZeroed(elementSize*capacity, zone)
	if ptr == nil {
		return SliceView{}, errors.OutOfMemory(elementSize*capacity, "slice.New")
	}
	m.AddSliceCount(1)

	return SliceView{
		ptr:         ptr,
		len:         length,
		cap:         capacity,
		elementSize: elementSize,
		typeID:      TypeSlice,
		zone:        zone,
		ownership:   memory.TransferFull,
		mutable:     true,
		magic:       Magic,
	}, nil
}

// FromRawParts wraps existing memory without allocating. The view is
// borrowed unless the caller asserts full transfer, in which case freeing
// the view hands the pointer to the manager's free path.
func FromRawParts(ptr unsafe.Pointer, length, elementSize uintptr, mutable bool, transfer memory.OwnershipTransfer) SliceView {
	return SliceView{
		ptr:         ptr,
		len:         length,
		cap:         length,
		elementSize: elementSize,
		typeID:      TypeSlice,
		zone:        memory.ZoneManual,
		ownership:   transfer,
		mutable:     mutable,
		magic:       Magic,
	}
}

// Validate checks the header's integrity invariants.
func (s SliceView) Validate() error {
	if s.magic != Magic {
		return errors.InvalidSlice("bad integrity tag")
	}
	if s.len > s.cap {
		return errors.InvalidSlice("len exceeds cap")
	}
	if s.len > 0 && s.ptr == nil {
		return errors.InvalidSlice("nil pointer with non-zero len")
	}
	if s.elementSize == 0 {
		return errors.InvalidSlice("zero element size")
	}
	return nil
}

// BoundsCheck reports whether index is accessible, as a bounds error when
// it is not. Indexing is against len, not cap.
func (s SliceView) BoundsCheck(index uintptr) error {
	if index >= s.len {
		return errors.IndexOutOfBounds(index, s.len)
	}
	return nil
}

// Get returns a pointer to element index. Fails with a bounds error when
// index >= len; the capacity beyond len is not readable.
func (s SliceView) Get(index uintptr) (unsafe.Pointer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.BoundsCheck(index); err != nil {
		return nil, err
	}
	return unsafe.Add(s.ptr, index*s.elementSize), nil
}

// Set copies elementSize bytes from value into element index. Mutability is
// checked before bounds.
func (s SliceView) Set(index uintptr, value unsafe.Pointer) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.mutable {
		return errors.NotMutable("slice.Set")
	}
	if err := s.BoundsCheck(index); err != nil {
		return err
	}
	if value == nil {
		return errors.NullPointer("slice.Set")
	}

	dst := unsafe.Add(s.ptr, index*s.elementSize)
	copy(unsafe.Slice((*byte)(dst), s.elementSize), unsafe.Slice((*byte)(value), s.elementSize))
	return nil
}

// Subslice returns a zero-copy borrowed view of [start, end). The new view
// shares the backing store, keeps the parent's spare capacity past start,
// and never owns the memory.
func (s SliceView) Subslice(start, end uintptr) (SliceView, error) {
	if err := s.Validate(); err != nil {
		return SliceView{}, err
	}
	if start > end || end > s.len {
		return SliceView{}, errors.IndexOutOfBounds(end, s.len)
	}

	return SliceView{
		ptr:         unsafe.Add(s.ptr, start*s.elementSize),
		len:         end - start,
		cap:         s.cap - start,
		elementSize: s.elementSize,
		typeID:      s.typeID,
		zone:        s.zone,
		ownership:   memory.TransferBorrowed,
		mutable:     s.mutable,
		magic:       Magic,
	}, nil
}

// Free releases the backing allocation when and only when this view fully
// owns it. Borrowed and shared views are no-ops, as is a second free of the
// same allocation (the registry entry is already gone).
func (s SliceView) Free(m *memory.Manager) {
	if s.ownership != memory.TransferFull || s.ptr == nil {
		return
	}
	if _, tracked := m.Lookup(s.ptr); tracked {
		m.AddSliceCount(-1)
	}
	m.Free(s.ptr, s.zone)
}

// SecureZero wipes the view's whole capacity in place.
func (s SliceView) SecureZero() {
	if s.ptr == nil {
		return
	}
	memory.SecureZero(s.ptr, s.cap*s.elementSize)
}

// Pointer returns the base address.
func (s SliceView) Pointer() unsafe.Pointer { return s.ptr }

// Len returns the number of accessible elements.
func (s SliceView) Len() uintptr { return s.len }

// Cap returns the capacity in elements.
func (s SliceView) Cap() uintptr { return s.cap }

// ElementSize returns the size of one element in bytes.
func (s SliceView) ElementSize() uintptr { return s.elementSize }

// TypeID returns the runtime type tag, TypeSlice for fresh views.
func (s SliceView) TypeID() uint32 { return s.typeID }

// WithTypeID returns a copy of the view tagged with a runtime type id for
// the optional type verification layer.
func (s SliceView) WithTypeID(id uint32) SliceView {
	s.typeID = id
	return s
}

// Zone returns the zone the backing memory came from.
func (s SliceView) Zone() memory.Zone { return s.zone }

// Ownership returns the view's transfer semantics.
func (s SliceView) Ownership() memory.OwnershipTransfer { return s.ownership }

// IsMutable reports whether Set is allowed.
func (s SliceView) IsMutable() bool { return s.mutable }

// Bytes returns the view's initialized contents as a Go byte slice sharing
// the backing store. Only valid while the backing memory lives.
func (s SliceView) Bytes() []byte {
	if s.ptr == nil || s.len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(s.ptr), s.len*s.elementSize)
}
