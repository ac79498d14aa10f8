package service

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// SearchCacheStore caches serialized search pages. Invalidate drops every
// page at once by moving to a new generation. Callers read the generation
// before querying the index and pass it to Set, so a fill that raced a write
// lands in a generation nobody reads.
type SearchCacheStore interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, generation uint64, key string) ([]byte, bool, error)
	Set(ctx context.Context, generation uint64, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopSearchCacheStore struct{}

func NewNoopSearchCacheStore() *NoopSearchCacheStore {
	return &NoopSearchCacheStore{}
}

func (s *NoopSearchCacheStore) Generation(context.Context) (uint64, error) {
	return 0, nil
}

func (s *NoopSearchCacheStore) Get(context.Context, uint64, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopSearchCacheStore) Set(context.Context, uint64, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopSearchCacheStore) Invalidate(context.Context) error {
	return nil
}

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemorySearchCacheStore struct {
	mu         sync.RWMutex
	generation uint64
	store      map[string]memoryCacheEntry
}

func NewInMemorySearchCacheStore() *InMemorySearchCacheStore {
	return &InMemorySearchCacheStore{store: make(map[string]memoryCacheEntry)}
}

func (s *InMemorySearchCacheStore) Generation(context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, nil
}

func (s *InMemorySearchCacheStore) Get(_ context.Context, generation uint64, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	full := fullCacheKey(generation, key)
	s.mu.RLock()
	entry, ok := s.store[full]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.store, full)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemorySearchCacheStore) Set(_ context.Context, generation uint64, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return nil
	}
	s.store[fullCacheKey(generation, key)] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemorySearchCacheStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.store = make(map[string]memoryCacheEntry)
	return nil
}

func fullCacheKey(generation uint64, key string) string {
	return strconv.FormatUint(generation, 10) + ":" + key
}
