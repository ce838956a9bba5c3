package acquisition

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// platformLimiters throttles extractor calls per platform.
type platformLimiters struct {
	limit    rate.Limit
	burst    int
	limiters map[domain.Platform]*rate.Limiter
	mu       sync.RWMutex
}

// newPlatformLimiters returns nil when rps is not positive, which disables throttling.
func newPlatformLimiters(rps float64, burst int) *platformLimiters {
	if rps <= 0 {
		return nil
	}

	if burst < 1 {
		burst = 1
	}

	return &platformLimiters{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[domain.Platform]*rate.Limiter),
	}
}

func (l *platformLimiters) Wait(ctx context.Context, platform domain.Platform) error {
	if l == nil {
		return nil
	}

	return l.get(platform).Wait(ctx)
}

func (l *platformLimiters) get(platform domain.Platform) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[platform]
	l.mu.RUnlock()

	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok = l.limiters[platform]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(l.limit, l.burst)
	l.limiters[platform] = limiter

	return limiter
}
