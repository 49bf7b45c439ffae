package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Storage. Used by tests and STORAGE_DRIVER=memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// FailPut, when set, is returned by Put instead of writing. Tests use it
	// to simulate a full or broken medium.
	FailPut error
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Get(ctx context.Context, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.Value = append([]byte(nil), e.Value...)
	return e, nil
}

func (m *Memory) Put(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}

	for _, e := range entries {
		current := m.entries[e.Key].Version
		if current != e.Version {
			return fmt.Errorf("%w: %s at %d, expected %d", ErrVersion, e.Key, current, e.Version)
		}
	}

	now := time.Now().UTC()
	for _, e := range entries {
		m.entries[e.Key] = Entry{
			Key:       e.Key,
			Value:     append([]byte(nil), e.Value...),
			Version:   e.Version + 1,
			UpdatedAt: now,
		}
	}
	return nil
}

// Set writes a raw value without a version check, bumping the version.
// Tests use it to plant corrupt or legacy data.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		Version:   m.entries[key].Version + 1,
		UpdatedAt: time.Now().UTC(),
	}
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
