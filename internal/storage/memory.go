package storage

import (
	"context"
	"sync"
)

// Memory is a mutex-guarded in-process store. It backs the "memory" config
// driver for local development and is the test substitute for the remote
// store.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Get(_ context.Context, key string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}

	cp := make([]byte, len(rec.Data))
	copy(cp, rec.Data)
	return Record{Data: cp, Version: rec.Version}, nil
}

func (m *Memory) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, data)
	return nil
}

func (m *Memory) SetVersioned(_ context.Context, key string, data []byte, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.records[key].Version
	if current != expectedVersion {
		return ErrVersionConflict
	}

	m.store(key, data)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}

func (m *Memory) store(key string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.records[key] = Record{Data: cp, Version: m.records[key].Version + 1}
}
