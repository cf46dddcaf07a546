package memory

import "sync"

var (
	globalMu      sync.RWMutex
	globalManager *Manager
)

// Initialize installs the process-wide manager. Later calls replace the
// handle; callers that need isolation should construct their own Manager.
func Initialize(options ...Option) *Manager {
	m := NewManager(options...)

	globalMu.Lock()
	globalManager = m
	globalMu.Unlock()

	return m
}

// Global returns the process-wide manager, constructing a default one on
// first use.
func Global() *Manager {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		return m
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalManager == nil {
		globalManager = NewManager()
	}
	return globalManager
}
