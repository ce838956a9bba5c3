package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvBotToken       = "BOT_TOKEN"
	testEnvDedupBackend   = "DEDUP_BACKEND"
	testEnvRedisURL       = "REDIS_URL"
	testEnvPostgresDSN    = "POSTGRES_DSN"
	testEnvHistoryEnabled = "HISTORY_ENABLED"
	testEnvMaxFileSize    = "MAX_FILE_SIZE_BYTES"
	testEnvMaxMessages    = "MAX_CONCURRENT_MESSAGES"
)

// Test values.
const (
	testBotToken    = "123456:ABC-DEF"
	testPostgresDSN = "postgres://localhost/test"
	testRedisURL    = "redis://localhost:6379/0"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvBotToken, testBotToken)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv(testEnvBotToken, "")
	os.Unsetenv(testEnvBotToken)

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testBotToken, cfg.BotToken)
	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, int64(52428800), cfg.MaxFileSize)
	assert.Equal(t, "#download", cfg.DownloadMarker)
	assert.Equal(t, "yt-dlp", cfg.YtDlpPath)
	assert.Equal(t, DedupBackendMemory, cfg.DedupBackend)
	assert.Equal(t, 10000, cfg.DedupCapacity)
	assert.Equal(t, 24*time.Hour, cfg.DedupTTL)
	assert.Equal(t, 30*time.Second, cfg.SnapshotPageLoadTimeout)
	assert.Equal(t, 2, cfg.MaxConcurrentAcquisitions)
	assert.True(t, cfg.SnapshotEnabled)
	assert.False(t, cfg.NeedsDatabase())
}

func TestLoad_BackendValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "redis without url",
			env:     map[string]string{testEnvDedupBackend: "redis"},
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name: "redis with url",
			env:  map[string]string{testEnvDedupBackend: "Redis", testEnvRedisURL: testRedisURL},
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{testEnvDedupBackend: "postgres"},
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name: "postgres with dsn",
			env:  map[string]string{testEnvDedupBackend: "postgres", testEnvPostgresDSN: testPostgresDSN},
		},
		{
			name:    "unknown backend",
			env:     map[string]string{testEnvDedupBackend: "memcached"},
			wantErr: errors.ErrUnknownDedupBackend,
		},
		{
			name:    "history without dsn",
			env:     map[string]string{testEnvHistoryEnabled: "true"},
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name:    "zero ceiling",
			env:     map[string]string{testEnvMaxFileSize: "0"},
			wantErr: errors.ErrInvalidConfig,
		},
		{
			name:    "zero message concurrency",
			env:     map[string]string{testEnvMaxMessages: "0"},
			wantErr: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, cfg.DedupBackend)
		})
	}
}

func TestConfigViews(t *testing.T) {
	cfg := &Config{
		DownloadDir:               "/tmp/dl",
		MaxFileSize:               1024,
		YtDlpPath:                 "/usr/bin/yt-dlp",
		MaxConcurrentAcquisitions: 3,
		SnapshotEnabled:           true,
		DedupBackend:              DedupBackendPostgres,
		PostgresDSN:               testPostgresDSN,
		DBMaxConnections:          4,
	}

	assert.Equal(t, "/tmp/dl", cfg.AcquisitionCfg().DownloadDir)
	assert.Equal(t, 3, cfg.AcquisitionCfg().MaxConcurrent)
	assert.Equal(t, "/tmp/dl", cfg.SnapshotCfg().OutputDir)
	assert.Equal(t, testPostgresDSN, cfg.DatabaseCfg().PostgresDSN)
	assert.Equal(t, int32(4), cfg.DatabaseCfg().MaxConnections)
	assert.Equal(t, DedupBackendPostgres, cfg.DedupCfg().Backend)
	assert.True(t, cfg.NeedsDatabase())
}
