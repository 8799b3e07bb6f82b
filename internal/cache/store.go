package cache

import (
	"context"
	"sync"
	"time"

	"news_aggregator/internal/models"
)

// Store is the long-lived layer behind windowless results. A Store miss is not
// an error.
type Store interface {
	Get(ctx context.Context, key string) (models.AggregationResult, bool, error)
	Set(ctx context.Context, key string, result models.AggregationResult) error
	Invalidate(ctx context.Context) error
}

type memoryEntry struct {
	result    models.AggregationResult
	expiresAt time.Time
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (models.AggregationResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		return models.AggregationResult{}, false, nil
	}
	return entry.result, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, result models.AggregationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{result: result, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}
