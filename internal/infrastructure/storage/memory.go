package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps files in a map (STORAGE_DRIVER=memory and tests)
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	// FailPut makes every Put fail with this error when set.
	FailPut error
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader) (int64, error) {
	if m.FailPut != nil {
		return 0, m.FailPut
	}
	if !validKey(key) {
		return 0, ErrInvalidKey
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	m.files[key] = data
	m.mu.Unlock()
	return int64(len(data)), nil
}

func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	m.mu.RLock()
	data, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(key string) string {
	return "mem://" + key
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[key]
	return ok
}
