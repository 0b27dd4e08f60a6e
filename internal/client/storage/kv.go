package storage

import (
	"context"
	"sync"
)

//go:generate moq -out kv_mock.go . KV

// KV is the device-local key-value storage the client persists into.
// It plays the role a browser's persistent storage plays for the web app:
// scoped to one device profile, no sync, capacity and availability not guaranteed.
type KV interface {
	// Get returns the value stored under key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}

// Unavailable is a KV that fails every call with ErrUnavailable.
// The client falls back to it when the local database cannot be opened,
// so every store above degrades to empty results.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

func (Unavailable) Set(context.Context, string, []byte) error {
	return ErrUnavailable
}

func (Unavailable) Remove(context.Context, string) error {
	return ErrUnavailable
}

// Memory is an in-process KV. Values are copied on the way in and out.
type Memory struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewMemory creates an empty in-memory KV
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
