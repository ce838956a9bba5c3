package db

import (
	"context"
	"fmt"
	"time"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// ProcessedMessages is a Postgres-backed processed-message set.
// The primary key on (chat_id, message_id) makes MarkIfAbsent atomic across replicas.
type ProcessedMessages struct {
	db *DB
}

// NewProcessedMessages creates the store over an open DB.
func NewProcessedMessages(database *DB) *ProcessedMessages {
	return &ProcessedMessages{db: database}
}

// MarkIfAbsent records id and reports whether this call inserted it.
func (p *ProcessedMessages) MarkIfAbsent(ctx context.Context, id domain.MessageID) (bool, error) {
	tag, err := p.db.Pool.Exec(ctx, `
		INSERT INTO processed_messages (chat_id, message_id)
		VALUES ($1, $2)
		ON CONFLICT (chat_id, message_id) DO NOTHING`,
		id.ChatID, id.MessageID,
	)
	if err != nil {
		return false, fmt.Errorf("insert processed message %s: %w", id.Key(), err)
	}

	return tag.RowsAffected() == 1, nil
}

// Len returns the number of recorded messages.
func (p *ProcessedMessages) Len(ctx context.Context) (int, error) {
	var n int
	if err := p.db.Pool.QueryRow(ctx, `SELECT count(*) FROM processed_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count processed messages: %w", err)
	}

	return n, nil
}

// DeleteBefore removes records older than cutoff and returns how many were removed.
func (p *ProcessedMessages) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.db.Pool.Exec(ctx, `DELETE FROM processed_messages WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune processed messages: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Ping verifies the underlying database is reachable.
func (p *ProcessedMessages) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
