package testfixtures

import (
	"context"
	"sync"

	"github.com/example/pocket-calendar/internal/persistence"
)

// MemoryKVStore is an in-memory persistence.KVStore for tests. It records
// writes and supports error injection so services can be exercised without a
// live database.
type MemoryKVStore struct {
	mu     sync.Mutex
	values map[string][]byte

	// GetErr and SetErr, when set, are returned by the respective operation
	// before touching stored state.
	GetErr error
	SetErr error

	sets int
}

// NewMemoryKVStore returns an empty in-memory store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string][]byte)}
}

// Get implements persistence.KVStore.
func (m *MemoryKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value, ok := m.values[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set implements persistence.KVStore.
func (m *MemoryKVStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	m.sets++
	return nil
}

// Seed stores a value directly, bypassing error injection.
func (m *MemoryKVStore) Seed(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
}

// Stored returns the current value for key, or nil when absent.
func (m *MemoryKVStore) Stored(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

// SetCalls reports how many successful writes the store has accepted.
func (m *MemoryKVStore) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
