package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Group runs goroutines with a cap on how many execute at once.
// Go blocks the caller while the group is full, which applies backpressure to the producer.
type Group struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	name   string
	logger *zerolog.Logger
}

// NewGroup creates a group that runs at most limit tasks concurrently.
func NewGroup(name string, limit int, logger *zerolog.Logger) *Group {
	if limit < 1 {
		limit = 1
	}

	return &Group{
		sem:    semaphore.NewWeighted(int64(limit)),
		name:   name,
		logger: getLogger(logger),
	}
}

// Go waits for a free slot and runs fn in a new goroutine.
// It returns an error without running fn if ctx is canceled while waiting.
// Panics inside fn are recovered and logged.
func (g *Group) Go(ctx context.Context, fn func(ctx context.Context)) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("worker group %s acquire: %w", g.name, err)
	}

	g.wg.Add(1)

	go func() {
		defer g.wg.Done()
		defer g.sem.Release(1)
		defer RecoverPanic(g.logger, g.name)

		fn(ctx)
	}()

	return nil
}

// Wait blocks until every started task has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Limiter bounds concurrent sections of code without spawning goroutines.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a limiter admitting at most limit holders.
func NewLimiter(limit int) *Limiter {
	if limit < 1 {
		limit = 1
	}

	return &Limiter{sem: semaphore.NewWeighted(int64(limit))}
}

// Do runs fn once a slot is free. It returns the context error if ctx ends first.
func (l *Limiter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("limiter acquire: %w", err)
	}
	defer l.sem.Release(1)

	return fn(ctx)
}
