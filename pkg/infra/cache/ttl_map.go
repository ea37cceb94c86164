package cache

import (
	"sync"
	"time"
)

// TTLEntry represents an entry in TTLMap
type TTLEntry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// TTLMap is a thread-safe map where every entry expires on its own deadline.
type TTLMap struct {
	mu    sync.RWMutex
	data  map[string]*TTLEntry
	ttl   time.Duration
	clock func() time.Time
}

func NewTTLMap(ttl time.Duration) *TTLMap {
	return NewTTLMapWithClock(ttl, time.Now)
}

func NewTTLMapWithClock(ttl time.Duration, clock func() time.Time) *TTLMap {
	if clock == nil {
		clock = time.Now
	}
	return &TTLMap{
		data:  make(map[string]*TTLEntry),
		ttl:   ttl,
		clock: clock,
	}
}

// Get retrieves a value if it hasn't expired. Expired entries are removed.
func (m *TTLMap) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	entry, exists := m.data[key]
	if !exists {
		m.mu.RUnlock()
		return nil, false
	}
	now := m.clock()
	isExpired := now.After(entry.ExpiresAt)
	value := entry.Value
	m.mu.RUnlock()

	if isExpired {
		m.mu.Lock()
		if current, ok := m.data[key]; ok && now.After(current.ExpiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return value, true
}

// Remaining returns the time left before key expires.
func (m *TTLMap) Remaining(key string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.data[key]
	if !ok {
		return 0, false
	}
	left := entry.ExpiresAt.Sub(m.clock())
	if left < 0 {
		return 0, false
	}
	return left, true
}

// Set stores value with the map's default TTL.
func (m *TTLMap) Set(key string, value interface{}) {
	m.SetWithTTL(key, value, m.ttl)
}

func (m *TTLMap) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &TTLEntry{
		Value:     value,
		ExpiresAt: m.clock().Add(ttl),
	}
}

func (m *TTLMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *TTLMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*TTLEntry)
}

func (m *TTLMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
