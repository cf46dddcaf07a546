package slice

import (
	"unicode/utf8"
	"unsafe"

	"github.com/asthra-lang/asthra-runtime/internal/errors"
	"github.com/asthra-lang/asthra-runtime/internal/memory"
)

// StringBuffer is the string-shaped fat pointer: UTF-8 bytes plus a logical
// character count. It follows the same lifecycle rules as SliceView; the
// concat and interpolate operations always allocate fresh owned buffers
// because their inputs may be borrowed.
type StringBuffer struct {
	ptr       unsafe.Pointer
	len       uintptr
	cap       uintptr
	charLen   int
	ownership memory.OwnershipTransfer
	mutable   bool
	zone      memory.Zone
	magic     uint32
}

// NewString copies or aliases a Go string into a StringBuffer. Full
// transfer copies the bytes into manager-owned memory the buffer must
// eventually free; borrowed transfer aliases the string's bytes and must
// not outlive it.
func NewString(m *memory.Manager, s string, transfer memory.OwnershipTransfer) (StringBuffer, error) {
	length := uintptr(len(s))

	buf := StringBuffer{
		len:       length,
		charLen:   utf8.RuneCountInString(s),
		ownership: transfer,
		mutable:   transfer == memory.TransferFull,
		zone:      memory.ZoneManual,
		magic:     Magic,
	}

	if transfer == memory.TransferFull {
		// Owned copy, NUL-padded for foreign consumers expecting C strings.
		ptr := m.Alloc(length+1, memory.ZoneManual)
		if ptr == nil {
			return StringBuffer{}, errors.OutOfMemory(length+1, "slice.NewString")
		}
		dst := unsafe.Slice((*byte)(ptr), length+1)
		copy(dst, s)
		dst[length] = 0
		buf.ptr = ptr
		buf.cap = length + 1
	} else if length > 0 {
		buf.ptr = unsafe.Pointer(unsafe.StringData(s))
		buf.cap = length
	}

	m.AddStringCount(1)
	return buf, nil
}

// StringFromRawParts wraps length bytes of existing UTF-8 data without
// copying.
func StringFromRawParts(ptr unsafe.Pointer, length uintptr, mutable bool, transfer memory.OwnershipTransfer) StringBuffer {
	charLen := 0
	if ptr != nil && length > 0 {
		charLen = utf8.RuneCount(unsafe.Slice((*byte)(ptr), length))
	}
	return StringBuffer{
		ptr:       ptr,
		len:       length,
		cap:       length,
		charLen:   charLen,
		ownership: transfer,
		mutable:   mutable,
		zone:      memory.ZoneManual,
		magic:     Magic,
	}
}

// Free releases the buffer when it fully owns its bytes; borrowed and
// shared buffers are no-ops. The live string count floors at zero.
func (b StringBuffer) Free(m *memory.Manager) {
	if b.ownership == memory.TransferFull && b.ptr != nil {
		m.Free(b.ptr, b.zone)
	}
	m.AddStringCount(-1)
}

// String materializes the buffer as a Go string copy.
func (b StringBuffer) String() string {
	if b.ptr == nil || b.len == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(b.ptr), b.len))
}

// Bytes returns the buffer contents sharing the backing store.
func (b StringBuffer) Bytes() []byte {
	if b.ptr == nil || b.len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(b.ptr), b.len)
}

// Pointer returns the base address.
func (b StringBuffer) Pointer() unsafe.Pointer { return b.ptr }

// Len returns the byte length.
func (b StringBuffer) Len() uintptr { return b.len }

// Cap returns the capacity in bytes.
func (b StringBuffer) Cap() uintptr { return b.cap }

// CharLen returns the logical length in encoded characters.
func (b StringBuffer) CharLen() int { return b.charLen }

// Ownership returns the buffer's transfer semantics.
func (b StringBuffer) Ownership() memory.OwnershipTransfer { return b.ownership }

// IsMutable reports whether the buffer's bytes may be written.
func (b StringBuffer) IsMutable() bool { return b.mutable }

// IsValidUTF8 reports whether the buffer holds well-formed UTF-8.
func (b StringBuffer) IsValidUTF8() bool {
	if b.len == 0 {
		return true
	}
	return utf8.Valid(b.Bytes())
}

// AsSlice views the string as a byte slice, carrying the string's own
// ownership and mutability.
func (b StringBuffer) AsSlice() SliceView {
	return FromRawParts(b.ptr, b.len, 1, b.mutable, b.ownership)
}

// SecureZero wipes the buffer's whole capacity in place.
func (b StringBuffer) SecureZero() {
	if b.ptr == nil {
		return
	}
	memory.SecureZero(b.ptr, b.cap)
}

// Concat allocates a fresh fully owned buffer holding a then b. Inputs are
// never mutated; either may be borrowed.
func Concat(m *memory.Manager, a, b StringBuffer) (StringBuffer, error) {
	if (a.ptr == nil && a.len > 0) || (b.ptr == nil && b.len > 0) {
		return StringBuffer{}, errors.NullPointer("slice.Concat")
	}

	newLen := a.len + b.len
	ptr := m.Alloc(newLen+1, memory.ZoneManual)
	if ptr == nil {
		return StringBuffer{}, errors.OutOfMemory(newLen+1, "slice.Concat")
	}

	dst := unsafe.Slice((*byte)(ptr), newLen+1)
	copy(dst, a.Bytes())
	copy(dst[a.len:], b.Bytes())
	dst[newLen] = 0

	m.AddStringCount(1)
	return StringBuffer{
		ptr:       ptr,
		len:       newLen,
		cap:       newLen + 1,
		charLen:   a.charLen + b.charLen,
		ownership: memory.TransferFull,
		mutable:   true,
		zone:      memory.ZoneManual,
		magic:     Magic,
	}, nil
}
