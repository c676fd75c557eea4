package store

import (
	"context"
	"sync"
)

// KV is a string key-value store, the shape of a browser's local storage.
type KV interface {
	// Get returns the value at key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process KV. WriteErr, when set, is returned by every Set,
// which simulates a full or disabled storage area.
type Memory struct {
	mu       sync.Mutex
	values   map[string]string
	WriteErr error
	writes   int
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty Memory KV.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Writes returns how many Set calls were attempted, including failed ones.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
