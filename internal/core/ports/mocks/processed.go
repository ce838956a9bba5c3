package mocks

import (
	"context"
	"sync"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// ProcessedMessageSet is a thread-safe, unbounded implementation of ports.ProcessedMessageSet.
type ProcessedMessageSet struct {
	mu   sync.Mutex
	seen map[domain.MessageID]struct{}

	// MarkIfAbsentFn allows overriding MarkIfAbsent behavior.
	MarkIfAbsentFn func(ctx context.Context, id domain.MessageID) (bool, error)
}

// NewProcessedMessageSet creates an empty set.
func NewProcessedMessageSet() *ProcessedMessageSet {
	return &ProcessedMessageSet{seen: make(map[domain.MessageID]struct{})}
}

// MarkIfAbsent inserts id and reports whether it was newly added.
func (s *ProcessedMessageSet) MarkIfAbsent(ctx context.Context, id domain.MessageID) (bool, error) {
	if s.MarkIfAbsentFn != nil {
		return s.MarkIfAbsentFn(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return false, nil
	}

	s.seen[id] = struct{}{}

	return true, nil
}

// Len returns the number of recorded identities.
func (s *ProcessedMessageSet) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen), nil
}

// Contains reports whether id has been recorded.
func (s *ProcessedMessageSet) Contains(id domain.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[id]

	return ok
}
