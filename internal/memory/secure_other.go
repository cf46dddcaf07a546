//go:build !unix

package memory

import "errors"

var errNoSecureMapping = errors.New("memory: page-locked mappings unavailable on this platform")

func mapLocked(size uintptr) ([]byte, bool, error) {
	return nil, false, errNoSecureMapping
}

func unmapLocked(buf []byte, locked bool) {}
