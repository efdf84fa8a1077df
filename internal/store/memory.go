// internal/store/memory.go
//
// In-memory SessionStore. Used in tests and when durability across restarts
// is not required. Concurrency-safe; contents are lost with the process.

package store

import "sync"

type memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore constructs an empty in-memory SessionStore.
func NewMemoryStore() SessionStore {
	return &memory{}
}

func (m *memory) Read() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrNoSession
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memory) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
