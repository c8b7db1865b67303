package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store backed by a mutex-guarded map.
// Suitable for tests and single-process deployments.
// All methods are safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time // zero = no expiry
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
}

// Get returns the value for key, or ErrNotFound. Expired entries count as absent.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.liveEntry(key)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key with an optional ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(key, value, ttl)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Update applies fn under the store lock, making the read-modify-write atomic.
func (m *Memory) Update(_ context.Context, key string, fn UpdateFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var old []byte
	if e, ok := m.liveEntry(key); ok {
		old = make([]byte, len(e.value))
		copy(old, e.value)
	}

	next, err := fn(old)
	if err != nil {
		return err
	}
	if next == nil {
		delete(m.entries, key)
		return nil
	}
	m.put(key, next, 0)
	return nil
}

// put stores a copy of value. Caller must hold the lock.
func (m *Memory) put(key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)
	e := memoryEntry{value: stored}
	if ttl > 0 {
		e.expires = m.clock().Add(ttl)
	}
	m.entries[key] = e
}

// liveEntry returns the entry for key if present and unexpired.
// Caller must hold the lock.
func (m *Memory) liveEntry(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expires.IsZero() && m.clock().After(e.expires) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
