package storage

import (
	"context"
	"sync"
)

// MemoryRepository keeps the encoded collections in process memory. It goes
// through the same encoding as the durable backends.
type MemoryRepository struct {
	mu    sync.RWMutex
	data  map[string][]byte
	saves int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data: make(map[string][]byte),
	}
}

func (m *MemoryRepository) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return decodeSnapshot(m.data)
}

func (m *MemoryRepository) Save(ctx context.Context, snap *Snapshot) error {
	encoded, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for name, payload := range encoded {
		m.data[name] = payload
	}
	m.saves++

	return nil
}

// Raw returns the stored JSON for a collection.
func (m *MemoryRepository) Raw(collection string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]byte(nil), m.data[collection]...)
}

// Saves counts successful Save calls.
func (m *MemoryRepository) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}

func (m *MemoryRepository) Close() error {
	return nil
}
