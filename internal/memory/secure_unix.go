//go:build unix

package memory

import "golang.org/x/sys/unix"

// mapLocked obtains an anonymous private mapping and best-effort locks it
// into physical memory so secrets never reach swap. A failed mlock is not
// fatal; the mapping is still usable and still zeroed on free.
func mapLocked(size uintptr) ([]byte, bool, error) {
	buf, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, false, err
	}
	locked := unix.Mlock(buf) == nil
	return buf, locked, nil
}

// unmapLocked releases a mapping obtained from mapLocked.
func unmapLocked(buf []byte, locked bool) {
	if locked {
		_ = unix.Munlock(buf)
	}
	_ = unix.Munmap(buf)
}
