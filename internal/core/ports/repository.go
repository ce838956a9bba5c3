// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
package ports

import (
	"context"
	"time"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// ProcessedMessageSet records message identities that have already been dispatched.
// MarkIfAbsent must be atomic: concurrent calls for one identity return true exactly once.
type ProcessedMessageSet interface {
	MarkIfAbsent(ctx context.Context, id domain.MessageID) (bool, error)
	Len(ctx context.Context) (int, error)
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistoryEntry is one finished acquisition.
type HistoryEntry struct {
	ID          string
	ChatID      int64
	MessageID   int
	URL         string
	Platform    domain.Platform
	Outcome     domain.Outcome
	FailureKind domain.FailureKind
	Size        int64
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// OutcomeCount aggregates history entries by outcome and failure kind.
type OutcomeCount struct {
	Outcome     domain.Outcome
	FailureKind domain.FailureKind
	Count       int
}

// AcquisitionLog stores acquisition history for operator reporting.
type AcquisitionLog interface {
	Record(ctx context.Context, entry HistoryEntry) error
	Summary(ctx context.Context, since time.Time) ([]OutcomeCount, error)
}
