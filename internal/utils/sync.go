package utils

import (
	"sync"
)

// OptionalRWMutex is a sync.RWMutex that can be switched off for callers that serialize access
// themselves. The zero value does not lock.
type OptionalRWMutex struct {
	mutex    sync.RWMutex
	useMutex bool
}

func NewOptionalRWMutex(useMutex bool) *OptionalRWMutex {
	return &OptionalRWMutex{useMutex: useMutex}
}

func (m *OptionalRWMutex) Enabled() bool {
	return m.useMutex
}

func (m *OptionalRWMutex) Lock() {
	if m.useMutex {
		m.mutex.Lock()
	}
}

func (m *OptionalRWMutex) Unlock() {
	if m.useMutex {
		m.mutex.Unlock()
	}
}

func (m *OptionalRWMutex) RLock() {
	if m.useMutex {
		m.mutex.RLock()
	}
}

func (m *OptionalRWMutex) RUnlock() {
	if m.useMutex {
		m.mutex.RUnlock()
	}
}
