package blob

import (
	"context"
	"fmt"
	"sync"
)

type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailPut — для тестов: Put возвращает эту ошибку.
	FailPut error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	const op = "storage.blob.MemoryStore.Get"

	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[key]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", op, key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	const op = "storage.blob.MemoryStore.Put"

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return fmt.Errorf("%s: %w", op, m.FailPut)
	}
	m.files[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
