package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// AcquisitionHistory stores finished acquisitions.
type AcquisitionHistory struct {
	db *DB
}

// NewAcquisitionHistory creates the history store over an open DB.
func NewAcquisitionHistory(database *DB) *AcquisitionHistory {
	return &AcquisitionHistory{db: database}
}

// Record inserts entry. A missing ID or CreatedAt is filled in.
func (h *AcquisitionHistory) Record(ctx context.Context, entry ports.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := h.db.Pool.Exec(ctx, `
		INSERT INTO acquisitions (id, chat_id, message_id, url, platform, outcome, failure_kind, size_bytes, elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		toUUID(entry.ID),
		entry.ChatID,
		entry.MessageID,
		entry.URL,
		string(entry.Platform),
		string(entry.Outcome),
		string(entry.FailureKind),
		entry.Size,
		entry.Elapsed.Milliseconds(),
		pgtype.Timestamptz{Time: entry.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert acquisition %s: %w", entry.ID, err)
	}

	return nil
}

// Summary counts acquisitions created at or after since, grouped by outcome and failure kind.
func (h *AcquisitionHistory) Summary(ctx context.Context, since time.Time) ([]ports.OutcomeCount, error) {
	rows, err := h.db.Pool.Query(ctx, `
		SELECT outcome, failure_kind, count(*)
		FROM acquisitions
		WHERE created_at >= $1
		GROUP BY outcome, failure_kind
		ORDER BY outcome, failure_kind`, since)
	if err != nil {
		return nil, fmt.Errorf("query acquisition summary: %w", err)
	}
	defer rows.Close()

	var out []ports.OutcomeCount

	for rows.Next() {
		var (
			outcome, kind string
			count         int
		)

		if err := rows.Scan(&outcome, &kind, &count); err != nil {
			return nil, fmt.Errorf("scan acquisition summary: %w", err)
		}

		out = append(out, ports.OutcomeCount{
			Outcome:     domain.Outcome(outcome),
			FailureKind: domain.FailureKind(kind),
			Count:       count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate acquisition summary: %w", err)
	}

	return out, nil
}
