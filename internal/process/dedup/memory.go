// Package dedup provides processed-message sets for the dispatch layer.
//
// Each implementation makes MarkIfAbsent atomic for a given message identity:
// MemorySet with a mutex, RedisSet with SET NX, and the Postgres store in the
// storage package with a primary key. Every implementation forgets identities
// after a configurable window, so memory use stays bounded.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// MemorySet is a process-local processed-message set bounded by capacity and TTL.
// When full, the oldest identity is evicted.
type MemorySet struct {
	mu    sync.Mutex
	cache *expirable.LRU[domain.MessageID, struct{}]
}

// NewMemorySet creates a set holding at most capacity identities for ttl each.
// A non-positive ttl keeps identities until they are evicted by capacity.
func NewMemorySet(capacity int, ttl time.Duration) *MemorySet {
	if capacity < 1 {
		capacity = 1
	}

	if ttl < 0 {
		ttl = 0
	}

	return &MemorySet{
		cache: expirable.NewLRU[domain.MessageID, struct{}](capacity, nil, ttl),
	}
}

// MarkIfAbsent records id and reports whether this call inserted it.
func (s *MemorySet) MarkIfAbsent(_ context.Context, id domain.MessageID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Peek(id); ok {
		return false, nil
	}

	s.cache.Add(id, struct{}{})

	return true, nil
}

// Len returns the number of identities currently remembered.
func (s *MemorySet) Len(_ context.Context) (int, error) {
	return s.cache.Len(), nil
}

// Ping always succeeds.
func (s *MemorySet) Ping(context.Context) error {
	return nil
}
