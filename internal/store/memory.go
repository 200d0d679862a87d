package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memItem struct {
	value   []byte
	expires time.Time
}

func (i memItem) expired(now time.Time) bool {
	return !i.expires.IsZero() && now.After(i.expires)
}

// Memory is a process-local KV guarded by a mutex.
type Memory struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memItem), now: time.Now}
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) ([]byte, bool) {
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if it.expired(m.now()) {
		delete(m.items, key)
		return nil, false
	}
	return it.value, true
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{value: clone(value), expires: m.expiry(ttl)}
	return nil
}

func (m *Memory) Swap(_ context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, _ := m.lookup(key)
	m.items[key] = memItem{value: clone(value), expires: m.expiry(ttl)}
	return prev, nil
}

func (m *Memory) Take(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.items, key)
	return v, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	keys := make([]string, 0)
	for k, it := range m.items {
		if it.expired(now) {
			delete(m.items, k)
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
