package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/counter"
)

var (
	_ counter.Store  = (*MemoryStore)(nil)
	_ counter.Pruner = (*MemoryStore)(nil)
)

// MemoryStore is an in-process counter store for tests and single-node
// development. Expired keys are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	events  map[string][]time.Time
	expires map[string]time.Time
	clock   func() time.Time
}

func NewMemoryStore(clock func() time.Time) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		events:  make(map[string][]time.Time),
		expires: make(map[string]time.Time),
		clock:   clock,
	}
}

func (s *MemoryStore) CountInRange(ctx context.Context, key string, from, to time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("count", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.live(key)
	lo := sort.Search(len(events), func(i int) bool { return !events[i].Before(from) })
	hi := sort.Search(len(events), func(i int) bool { return events[i].After(to) })
	if hi < lo {
		return 0, nil
	}
	return int64(hi - lo), nil
}

func (s *MemoryStore) AddEvent(ctx context.Context, key string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return unavailable("add", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.live(key)
	i := sort.Search(len(events), func(i int) bool { return events[i].After(at) })
	events = append(events, time.Time{})
	copy(events[i+1:], events[i:])
	events[i] = at
	s.events[key] = events
	return nil
}

func (s *MemoryStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return unavailable("expire", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[key]; !ok {
		return nil
	}
	s.expires[key] = s.clock().Add(ttl)
	return nil
}

func (s *MemoryStore) Prune(ctx context.Context, key string, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return unavailable("prune", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.live(key)
	i := sort.Search(len(events), func(i int) bool { return !events[i].Before(before) })
	if i == 0 {
		return nil
	}
	if i == len(events) {
		s.drop(key)
		return nil
	}
	s.events[key] = append([]time.Time(nil), events[i:]...)
	return nil
}

func (s *MemoryStore) Inspect(ctx context.Context, key string) (KeyInfo, error) {
	if err := ctx.Err(); err != nil {
		return KeyInfo{}, unavailable("inspect", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	info := KeyInfo{Key: key, Events: int64(len(s.live(key))), TTL: -1}
	if deadline, ok := s.expires[key]; ok {
		info.TTL = deadline.Sub(s.clock())
	}
	return info, nil
}

// live returns the events of key, dropping the key first if it has expired.
// Callers hold s.mu.
func (s *MemoryStore) live(key string) []time.Time {
	if deadline, ok := s.expires[key]; ok && s.clock().After(deadline) {
		s.drop(key)
		return nil
	}
	return s.events[key]
}

func (s *MemoryStore) drop(key string) {
	delete(s.events, key)
	delete(s.expires, key)
}
