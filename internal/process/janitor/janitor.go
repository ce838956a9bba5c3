// Package janitor removes leftovers: artifacts orphaned by crashes and expired
// processed-message rows in Postgres.
package janitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/platform/observability"
	"github.com/victordov/telegram-video-downloader/internal/platform/worker"
)

const (
	taskSweepArtifacts = "sweep_artifacts"
	taskPruneProcessed = "prune_processed"

	logFieldRemoved = "removed"
	logFieldDir     = "dir"
)

// Pruner deletes processed-message records older than a cutoff.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Locker takes a cluster-wide lock so only one replica prunes at a time.
type Locker interface {
	TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (func(), bool, error)
}

// Config configures the janitor.
type Config struct {
	// Dir is swept for files older than MaxAge. MaxAge must exceed the longest acquisition.
	Dir      string
	MaxAge   time.Duration
	Interval time.Duration

	// RetainProcessed is how long processed-message rows are kept.
	RetainProcessed time.Duration
	PruneLockID     int64
}

type Janitor struct {
	cfg    Config
	pruner Pruner
	locker Locker
	now    func() time.Time
	logger *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) *Janitor {
	return &Janitor{cfg: cfg, now: time.Now, logger: logger}
}

// WithPruner enables processed-message pruning. locker may be nil.
func (j *Janitor) WithPruner(p Pruner, l Locker) *Janitor {
	j.pruner = p
	j.locker = l

	return j
}

// Run sweeps on every interval until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) error {
	tasks := []worker.PeriodicTask{{
		Name:     taskSweepArtifacts,
		Interval: j.cfg.Interval,
		Run: func(ctx context.Context) {
			if _, err := j.SweepArtifacts(ctx); err != nil {
				j.logger.Warn().Err(err).Msg("artifact sweep failed")
			}
		},
	}}

	if j.pruner != nil {
		tasks = append(tasks, worker.PeriodicTask{
			Name:     taskPruneProcessed,
			Interval: j.cfg.Interval,
			Run: func(ctx context.Context) {
				if _, err := j.PruneProcessed(ctx); err != nil {
					j.logger.Warn().Err(err).Msg("processed-message prune failed")
				}
			},
		})
	}

	return worker.Loop(ctx, worker.Config{
		Name:          "janitor",
		PollInterval:  j.cfg.Interval,
		PeriodicTasks: tasks,
		Logger:        j.logger,
	})
}

// SweepArtifacts removes regular files in Dir last modified more than MaxAge ago.
func (j *Janitor) SweepArtifacts(ctx context.Context) (int, error) {
	if j.cfg.Dir == "" || j.cfg.MaxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(j.cfg.Dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", j.cfg.Dir, err)
	}

	cutoff := j.now().Add(-j.cfg.MaxAge)
	removed := 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(j.cfg.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Warn().Err(err).Str("path", path).Msg("failed to remove stale artifact")

			continue
		}

		removed++
	}

	if removed > 0 {
		observability.JanitorRemovedFiles.Add(float64(removed))
		j.logger.Info().Int(logFieldRemoved, removed).Str(logFieldDir, j.cfg.Dir).Msg("removed stale artifacts")
	}

	return removed, nil
}

// PruneProcessed deletes expired processed-message rows. It is a no-op when
// another replica holds the prune lock.
func (j *Janitor) PruneProcessed(ctx context.Context) (int64, error) {
	if j.pruner == nil || j.cfg.RetainProcessed <= 0 {
		return 0, nil
	}

	if j.locker != nil {
		release, acquired, err := j.locker.TryAcquireAdvisoryLock(ctx, j.cfg.PruneLockID)
		if err != nil {
			return 0, err
		}

		if !acquired {
			j.logger.Debug().Msg("prune lock held elsewhere, skipping")

			return 0, nil
		}

		defer release()
	}

	n, err := j.pruner.DeleteBefore(ctx, j.now().Add(-j.cfg.RetainProcessed))
	if err != nil {
		return 0, err
	}

	if n > 0 {
		j.logger.Info().Int64(logFieldRemoved, n).Msg("pruned processed messages")
	}

	return n, nil
}
