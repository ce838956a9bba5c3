package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// AcquisitionLog is a thread-safe in-memory implementation of ports.AcquisitionLog.
type AcquisitionLog struct {
	mu      sync.Mutex
	entries []ports.HistoryEntry

	// RecordFn allows overriding Record behavior.
	RecordFn func(ctx context.Context, entry ports.HistoryEntry) error
}

// Record appends entry.
func (l *AcquisitionLog) Record(ctx context.Context, entry ports.HistoryEntry) error {
	if l.RecordFn != nil {
		return l.RecordFn(ctx, entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)

	return nil
}

// Summary counts entries created at or after since, grouped by outcome and failure kind.
func (l *AcquisitionLog) Summary(_ context.Context, since time.Time) ([]ports.OutcomeCount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []ports.OutcomeCount

	index := make(map[ports.OutcomeCount]int)

	for _, e := range l.entries {
		if e.CreatedAt.Before(since) {
			continue
		}

		key := ports.OutcomeCount{Outcome: e.Outcome, FailureKind: e.FailureKind}
		if i, ok := index[key]; ok {
			out[i].Count++

			continue
		}

		index[key] = len(out)
		key.Count = 1
		out = append(out, key)
	}

	return out, nil
}

// Entries returns a copy of the recorded entries.
func (l *AcquisitionLog) Entries() []ports.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]ports.HistoryEntry(nil), l.entries...)
}
