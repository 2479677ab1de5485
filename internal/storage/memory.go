package storage

import "sync"

// Memory is an in-process Store used in tests and as a fallback when no
// data directory is configured.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get returns the stored value and whether the key exists
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}

	// Return a copy to prevent external modifications
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set writes a value, replacing any existing one
func (m *Memory) Set(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.items[key] = stored
	m.mu.Unlock()
	return nil
}

// Delete removes a key
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
