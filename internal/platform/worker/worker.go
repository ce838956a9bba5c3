// Package worker provides the background-execution helpers shared by the bot:
// a periodic task loop, bounded goroutine groups, timeouts and panic recovery.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	logFieldWorker = "worker"
	logFieldTask   = "task"
	logFieldTook   = "took"
)

// PeriodicTask is a job the loop runs every Interval. Tasks with a
// non-positive Interval or a nil Run are skipped.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is how often the loop checks for due tasks.
	PollInterval time.Duration

	// PeriodicTasks are all due on the first tick.
	PeriodicTasks []PeriodicTask

	// OnStop is called once when the loop exits.
	OnStop func()

	Logger *zerolog.Logger
}

type scheduledTask struct {
	PeriodicTask
	next time.Time
}

// Loop runs periodic tasks until the context is canceled and returns the wrapped ctx.Err().
// Tasks run one at a time. A panicking task is logged and rescheduled.
func Loop(ctx context.Context, cfg Config) error {
	logger := getLogger(cfg.Logger).With().Str(logFieldWorker, cfg.Name).Logger()
	logger.Info().Int("tasks", len(cfg.PeriodicTasks)).Msg("starting worker loop")

	defer func() {
		if cfg.OnStop != nil {
			cfg.OnStop()
		}

		logger.Info().Msg("worker loop stopped")
	}()

	tasks := schedule(cfg.PeriodicTasks)

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}

		runDue(ctx, tasks, time.Now(), &logger)

		select {
		case <-ctx.Done():
			return fmt.Errorf("worker loop %s: %w", cfg.Name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func schedule(in []PeriodicTask) []scheduledTask {
	out := make([]scheduledTask, 0, len(in))

	for _, t := range in {
		if t.Interval <= 0 || t.Run == nil {
			continue
		}

		out = append(out, scheduledTask{PeriodicTask: t})
	}

	return out
}

func runDue(ctx context.Context, tasks []scheduledTask, now time.Time, logger *zerolog.Logger) {
	for i := range tasks {
		task := &tasks[i]
		if now.Before(task.next) || ctx.Err() != nil {
			continue
		}

		start := time.Now()
		runTask(ctx, &task.PeriodicTask, logger)
		task.next = now.Add(task.Interval)

		logger.Debug().Str(logFieldTask, task.Name).Dur(logFieldTook, time.Since(start)).Msg("periodic task finished")
	}
}

func runTask(ctx context.Context, task *PeriodicTask, logger *zerolog.Logger) {
	defer RecoverPanic(logger, task.Name)

	task.Run(ctx)
}

// Wait blocks until d elapses or ctx is canceled, returning the wrapped context error in that case.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// RunWithTimeout runs fn with a timeout derived from the parent context.
// A non-positive timeout runs fn with the parent context unchanged.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(timeoutCtx)
}

// RecoverPanic recovers from panics and logs them.
// Use as: defer worker.RecoverPanic(logger, "operation name")
func RecoverPanic(logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		getLogger(logger).Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")
	}
}

func getLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()

		return &nop
	}

	return logger
}
