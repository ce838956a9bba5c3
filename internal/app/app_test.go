package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/internal/platform/config"
	"github.com/victordov/telegram-video-downloader/internal/process/dedup"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		BotToken:                  "token",
		DownloadDir:               filepath.Join(t.TempDir(), "downloads"),
		MaxFileSize:               1 << 20,
		DownloadMarker:            "#download",
		YtDlpPath:                 filepath.Join(t.TempDir(), "missing-yt-dlp"),
		MaxConcurrentAcquisitions: 1,
		MaxConcurrentMessages:     1,
		DedupBackend:              config.DedupBackendMemory,
		DedupCapacity:             10,
		DedupTTL:                  time.Hour,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	logger := zerolog.Nop()

	a, err := New(context.Background(), cfg, &logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return a
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	assert.IsType(t, &dedup.MemorySet{}, a.processed)
	assert.Nil(t, a.history)
	assert.Nil(t, a.database)
	assert.DirExists(t, cfg.DownloadDir)
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.DedupBackend = config.DedupBackendRedis
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.RedisKeyPrefix = "test:"

	a := newTestApp(t, cfg)

	assert.IsType(t, &dedup.RedisSet{}, a.processed)
	assert.NotNil(t, a.redis)

	names := make([]string, 0)
	for _, c := range a.readinessChecks() {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"yt-dlp", "dedup"}, names)
}

func TestNewProcessedSetUnknownBackend(t *testing.T) {
	logger := zerolog.Nop()
	a := &App{cfg: testConfig(t), logger: &logger}

	_, err := a.newProcessedSet(context.Background(), config.DedupConfig{Backend: "etcd"})
	require.ErrorIs(t, err, errors.ErrUnknownDedupBackend)

	_, err = a.newProcessedSet(context.Background(), config.DedupConfig{Backend: config.DedupBackendPostgres})
	require.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestRunFetchRequiresURL(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	err := a.RunFetch(context.Background(), "")
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestRunFetchUnsupportedURL(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	err := a.RunFetch(context.Background(), "https://example.com/video")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported_url")
}

func TestReadinessReportsMissingExtractor(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	checks := a.readinessChecks()
	require.NotEmpty(t, checks)
	require.ErrorIs(t, checks[0].Check(context.Background()), errors.ErrExtractorUnavailable)
}
