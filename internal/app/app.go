// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// the operational modes:
//
//   - Bot mode: long-polls Telegram and answers links with downloaded media
//   - Fetch mode: runs one acquisition for a URL and exits, for operators
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/bot"
	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	coreerrors "github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/internal/core/links/classify"
	"github.com/victordov/telegram-video-downloader/internal/core/policy"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/dispatch"
	"github.com/victordov/telegram-video-downloader/internal/media/snapshot"
	"github.com/victordov/telegram-video-downloader/internal/media/ytdlp"
	"github.com/victordov/telegram-video-downloader/internal/platform/config"
	"github.com/victordov/telegram-video-downloader/internal/platform/observability"
	"github.com/victordov/telegram-video-downloader/internal/process/acquisition"
	"github.com/victordov/telegram-video-downloader/internal/process/dedup"
	"github.com/victordov/telegram-video-downloader/internal/process/janitor"
	db "github.com/victordov/telegram-video-downloader/internal/storage"
)

const (
	redisConnectTimeout = 30 * time.Second
	downloadDirMode     = 0o755
	errBotInit          = "bot initialization failed: %w"

	logFieldBackend  = "backend"
	logFieldURL      = "url"
	logFieldOutcome  = "outcome"
	logFieldPath     = "path"
	logFieldPlatform = "platform"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	database   *db.DB
	redis      *redis.Client
	processed  ports.ProcessedMessageSet
	history    ports.AcquisitionLog
	classifier *classify.Classifier
	extractor  *ytdlp.Client
	pipeline   *acquisition.Pipeline
}

// New connects the configured stores and builds the acquisition pipeline.
// Callers must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if err := os.MkdirAll(cfg.DownloadDir, downloadDirMode); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	if err := a.connectStores(ctx); err != nil {
		a.Close()

		return nil, err
	}

	a.classifier = classify.NewDefault()
	a.extractor = ytdlp.New(ytdlp.Config{Binary: cfg.YtDlpPath, WorkDir: cfg.DownloadDir}, logger)

	acq := cfg.AcquisitionCfg()
	snap := cfg.SnapshotCfg()

	var renderer ports.Renderer
	if snap.Enabled {
		renderer = snapshot.New(snapshot.Config{
			Enabled:         snap.Enabled,
			ChromePath:      snap.ChromePath,
			OutputDir:       snap.OutputDir,
			PageLoadTimeout: snap.PageLoadTimeout,
			Timeout:         snap.Timeout,
			StrategyTimeout: snap.StrategyTimeout,
			SettleDelay:     snap.SettleDelay,
		}, logger)
	}

	a.pipeline = acquisition.New(
		a.classifier,
		policy.NewBuilder(acq.MaxFileSize, acq.UserAgent),
		a.extractor,
		renderer,
		acquisition.Options{
			MaxConcurrent:  acq.MaxConcurrent,
			RPSPerPlatform: acq.RPSPerPlatform,
			Burst:          acq.Burst,
			ProbeTimeout:   acq.ProbeTimeout,
			FetchTimeout:   acq.FetchTimeout,
		},
		logger,
	)

	return a, nil
}

func (a *App) connectStores(ctx context.Context) error {
	if a.cfg.NeedsDatabase() {
		dbCfg := a.cfg.DatabaseCfg()

		database, err := db.NewWithOptions(ctx, dbCfg.PostgresDSN, db.PoolOptions{
			MaxConns: dbCfg.MaxConnections,
			MinConns: dbCfg.MinConnections,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		a.database = database

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		if a.cfg.HistoryEnabled {
			a.history = db.NewAcquisitionHistory(database)
		}
	}

	processed, err := a.newProcessedSet(ctx, a.cfg.DedupCfg())
	if err != nil {
		return err
	}

	a.processed = processed

	return nil
}

func (a *App) newProcessedSet(ctx context.Context, cfg config.DedupConfig) (ports.ProcessedMessageSet, error) {
	a.logger.Info().Str(logFieldBackend, cfg.Backend).Msg("processed-message store selected")

	switch cfg.Backend {
	case config.DedupBackendMemory:
		return dedup.NewMemorySet(cfg.Capacity, cfg.TTL), nil
	case config.DedupBackendRedis:
		client, err := dedup.ConnectRedis(ctx, cfg.RedisURL, redisConnectTimeout, a.logger)
		if err != nil {
			return nil, err
		}

		a.redis = client

		return dedup.NewRedisSet(client, cfg.RedisKeyPrefix, cfg.TTL), nil
	case config.DedupBackendPostgres:
		if a.database == nil {
			return nil, fmt.Errorf("%w: postgres dedup backend without database", coreerrors.ErrInvalidConfig)
		}

		return db.NewProcessedMessages(a.database), nil
	default:
		return nil, fmt.Errorf("%w: %q", coreerrors.ErrUnknownDedupBackend, cfg.Backend)
	}
}

// Close releases store connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing redis client")
		}
	}

	if a.database != nil {
		a.database.Close()
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.cfg.HealthPort, a.logger, a.readinessChecks()...)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

func (a *App) readinessChecks() []observability.ReadinessCheck {
	checks := []observability.ReadinessCheck{{Name: "yt-dlp", Check: a.extractor.Ping}}

	if p, ok := a.processed.(ports.Pinger); ok {
		checks = append(checks, observability.ReadinessCheck{Name: "dedup", Check: p.Ping})
	}

	if a.database != nil && a.cfg.DedupBackend != config.DedupBackendPostgres {
		checks = append(checks, observability.ReadinessCheck{Name: "database", Check: a.database.Ping})
	}

	return checks
}

// RunBot runs the bot mode until ctx is canceled.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	api, err := bot.NewAPI(a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	messenger := bot.NewMessenger(api)

	dispatcher := dispatch.New(dispatch.Deps{
		Processed:  a.processed,
		Classifier: a.classifier,
		Acquirer:   a.pipeline,
		Messenger:  messenger,
		History:    a.history,
	}, a.cfg.DownloadMarker, a.logger)

	b := bot.New(bot.Deps{
		API:       api,
		Messenger: messenger,
		Handler:   dispatcher,
		Processed: a.processed,
		History:   a.history,
	}, bot.Options{
		MaxConcurrentMessages: a.cfg.MaxConcurrentMessages,
		Marker:                a.cfg.DownloadMarker,
	}, a.logger)

	go a.runJanitor(ctx)

	return b.Run(ctx)
}

func (a *App) runJanitor(ctx context.Context) {
	j := janitor.New(janitor.Config{
		Dir:             a.cfg.DownloadDir,
		MaxAge:          a.cfg.ArtifactMaxAge,
		Interval:        a.cfg.JanitorInterval,
		RetainProcessed: a.cfg.DedupTTL,
		PruneLockID:     db.PruneLockID,
	}, a.logger)

	if pm, ok := a.processed.(*db.ProcessedMessages); ok {
		j.WithPruner(pm, a.database)
	}

	if err := j.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("janitor stopped")
	}
}

// RunFetch acquires url once, logs the outcome and removes the artifact.
func (a *App) RunFetch(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("%w: --url is required in fetch mode", coreerrors.ErrInvalidInput)
	}

	res := a.pipeline.Acquire(ctx, domain.AcquisitionRequest{URL: url})

	event := a.logger.Info().Str(logFieldURL, url).Str(logFieldOutcome, string(res.Outcome))

	if res.Artifact != nil {
		defer func() {
			if err := os.Remove(res.Artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				a.logger.Warn().Err(err).Str(logFieldPath, res.Artifact.Path).Msg("failed to remove artifact")
			}
		}()

		event.
			Str(logFieldPlatform, string(res.Artifact.Platform)).
			Str("title", res.Artifact.Title).
			Int64("size_bytes", res.Artifact.Size).
			Str(logFieldPath, res.Artifact.Path).
			Msg("acquisition finished")

		return nil
	}

	event.Str("failure_kind", string(res.FailureKind())).Msg("acquisition failed")

	if res.Failure != nil {
		return fmt.Errorf("acquisition failed: %s: %s", res.Failure.Kind, res.Failure.Message)
	}

	return nil
}
