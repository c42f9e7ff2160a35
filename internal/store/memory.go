package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by a MemoryStore after Close.
var ErrClosed = errors.New("store is closed")

// MemoryStore keeps items in a map. Nothing survives the process; it backs the
// degraded mode used when no durable store can be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]string
	quota  int64
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		items: make(map[string]string),
		quota: o.quota,
	}
}

func (m *MemoryStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	value, ok := m.items[key]
	return value, ok, nil
}

func (m *MemoryStore) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.quota > 0 {
		var others int64
		for k, v := range m.items {
			if k != key {
				others += int64(len(v))
			}
		}
		if others+int64(len(value)) > m.quota {
			return fmt.Errorf("failed to set item %q: %w", key, ErrQuotaExceeded)
		}
	}

	m.items[key] = value
	return nil
}

func (m *MemoryStore) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Close marks the store closed; later calls fail with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
