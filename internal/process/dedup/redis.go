package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/errors"
)

const (
	redisPingTimeout   = 2 * time.Second
	redisInitialWait   = time.Second
	redisMaxWait       = 10 * time.Second
	redisScanBatchSize = 1000
)

// RedisSet is a processed-message set shared by every replica using the same Redis.
type RedisSet struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSet creates a set storing identities under prefix with the given ttl.
// A non-positive ttl stores keys without expiry.
func NewRedisSet(client *redis.Client, prefix string, ttl time.Duration) *RedisSet {
	if ttl < 0 {
		ttl = 0
	}

	return &RedisSet{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSet) key(id domain.MessageID) string {
	return s.prefix + id.Key()
}

// MarkIfAbsent records id with SET NX and reports whether this call inserted it.
func (s *RedisSet) MarkIfAbsent(ctx context.Context, id domain.MessageID) (bool, error) {
	added, err := s.client.SetNX(ctx, s.key(id), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", id.Key(), err)
	}

	return added, nil
}

// Len counts keys under the prefix. It scans the keyspace and is meant for /status, not hot paths.
func (s *RedisSet) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", redisScanBatchSize).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan: %w", err)
		}

		total += len(keys)
		cursor = next

		if cursor == 0 {
			return total, nil
		}
	}
}

// Ping verifies Redis is reachable.
func (s *RedisSet) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", errors.ErrStoreUnavailable, err)
	}

	return nil
}

// ConnectRedis opens a client from a redis:// URL and waits until it answers PING,
// backing off exponentially until ctx or connectTimeout expires.
func ConnectRedis(ctx context.Context, rawURL string, connectTimeout time.Duration, logger *zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	wait := redisInitialWait

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, redisPingTimeout)
		err = client.Ping(pingCtx).Err()

		pingCancel()

		if err == nil {
			logger.Info().Str("addr", opts.Addr).Int("attempts", attempt).Msg("connected to redis")

			return client, nil
		}

		logger.Warn().Err(err).Str("addr", opts.Addr).Int("attempt", attempt).Dur("next_retry_in", wait).Msg("redis connection failed, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()

			_ = client.Close()

			return nil, fmt.Errorf("%w: redis at %s after %d attempts: %w", errors.ErrStoreUnavailable, opts.Addr, attempt, err)
		case <-timer.C:
		}

		wait *= 2
		if wait > redisMaxWait {
			wait = redisMaxWait
		}
	}
}
