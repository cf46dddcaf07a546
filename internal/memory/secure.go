package memory

import (
	"runtime"
	"unsafe"
)

// wipe overwrites size bytes at ptr with zeros. The KeepAlive fence stops
// the compiler from treating the stores as dead when the buffer is about to
// be released.
func wipe(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil || size == 0 {
		return
	}
	buf := unsafe.Slice((*byte)(ptr), size)
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// SecureZero wipes a buffer in place without freeing it. Works on any
// memory, tracked or not.
func SecureZero(ptr unsafe.Pointer, size uintptr) {
	wipe(ptr, size)
}

// SecureAlloc allocates zeroed, page-locked memory through the manager's
// Secure zone. Returns nil when no memory is available.
func (m *Manager) SecureAlloc(size uintptr) unsafe.Pointer {
	return m.AllocZeroed(size, ZoneSecure)
}

// SecureFree wipes and releases a secure allocation. The explicit size lets
// untracked buffers be wiped too; tracked blocks are wiped again by the
// secure backend on release.
func (m *Manager) SecureFree(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	wipe(ptr, size)
	m.Free(ptr, ZoneSecure)
}
