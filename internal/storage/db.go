// Package db provides PostgreSQL persistence for the video bot.
//
// This package contains:
//   - DB: Connection pool wrapper with retrying connect and goose migrations
//   - ProcessedMessages: durable processed-message set shared by replicas
//   - AcquisitionHistory: log of finished acquisitions for /status reporting
//
// Postgres is optional. It is only connected when the postgres dedup backend
// or acquisition history is enabled.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/pressly/goose/v3/lock"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/migrations"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zerolog.Logger
}

// PoolOptions configures the database connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// NewWithOptions connects to dsn, retrying with backoff until the server answers
// or the attempts run out.
func NewWithOptions(ctx context.Context, dsn string, opts PoolOptions, logger *zerolog.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	applyPoolOptions(config, opts)

	pool, err := connect(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	return &DB{Pool: pool, Logger: logger}, nil
}

func applyPoolOptions(config *pgxpool.Config, opts PoolOptions) {
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}

	if opts.MinConns > 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}
}

func connect(ctx context.Context, config *pgxpool.Config, logger *zerolog.Logger) (*pgxpool.Pool, error) {
	var lastErr error

	backoff := connectBackoffStart

	for attempt := 1; attempt <= maxConnectionRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logger.Info().Str("host", config.ConnConfig.Host).Msg("connected to postgres")

				return pool, nil
			}

			pool.Close()
		}

		lastErr = err

		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to database: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, connectBackoffMax)
	}

	return nil, fmt.Errorf("%w: postgres after %d attempts: %w", errors.ErrStoreUnavailable, maxConnectionRetries, lastErr)
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}

	return nil
}

// Migrate applies pending migrations. Replicas starting together serialize on
// a postgres session lock, so only one of them runs goose at a time.
func (db *DB) Migrate(ctx context.Context) error {
	locker, err := lock.NewPostgresSessionLocker(lock.WithLockID(migrationLockID))
	if err != nil {
		return fmt.Errorf("create migration locker: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(database.DialectPostgres, sqlDB, migrations.FS, goose.WithSessionLocker(locker))
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	for _, r := range results {
		db.Logger.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("took", r.Duration).
			Msg("applied migration")
	}

	return nil
}

func toUUID(id string) pgtype.UUID {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}

	return pgtype.UUID{Bytes: u, Valid: true}
}

func fromUUID(uid pgtype.UUID) string {
	if !uid.Valid {
		return ""
	}

	return uuid.UUID(uid.Bytes).String()
}
