package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
)

// Dedup backends.
const (
	DedupBackendMemory   = "memory"
	DedupBackendRedis    = "redis"
	DedupBackendPostgres = "postgres"
)

const errFmtInvalid = "%w: %s"

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BotToken string `env:"BOT_TOKEN,required"`

	// Acquisition
	DownloadDir               string        `env:"DOWNLOAD_DIR" envDefault:"./downloads"`
	MaxFileSize               int64         `env:"MAX_FILE_SIZE_BYTES" envDefault:"52428800"`
	DownloadMarker            string        `env:"DOWNLOAD_MARKER" envDefault:"#download"`
	UserAgent                 string        `env:"USER_AGENT"`
	YtDlpPath                 string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	ProbeTimeout              time.Duration `env:"PROBE_TIMEOUT" envDefault:"60s"`
	FetchTimeout              time.Duration `env:"FETCH_TIMEOUT" envDefault:"5m"`
	MaxConcurrentAcquisitions int           `env:"MAX_CONCURRENT_ACQUISITIONS" envDefault:"2"`
	MaxConcurrentMessages     int           `env:"MAX_CONCURRENT_MESSAGES" envDefault:"8"`
	ExtractRPSPerPlatform     float64       `env:"EXTRACT_RPS_PER_PLATFORM" envDefault:"1"`
	ExtractBurst              int           `env:"EXTRACT_BURST" envDefault:"2"`

	// Snapshot fallback
	SnapshotEnabled         bool          `env:"SNAPSHOT_ENABLED" envDefault:"true"`
	ChromePath              string        `env:"CHROME_PATH"`
	SnapshotPageLoadTimeout time.Duration `env:"SNAPSHOT_PAGE_LOAD_TIMEOUT" envDefault:"30s"`
	SnapshotTimeout         time.Duration `env:"SNAPSHOT_TIMEOUT" envDefault:"90s"`
	SnapshotStrategyTimeout time.Duration `env:"SNAPSHOT_STRATEGY_TIMEOUT" envDefault:"3s"`
	SnapshotSettleDelay     time.Duration `env:"SNAPSHOT_SETTLE_DELAY" envDefault:"5s"`

	// Dedup and history
	DedupBackend     string        `env:"DEDUP_BACKEND" envDefault:"memory"`
	DedupCapacity    int           `env:"DEDUP_CAPACITY" envDefault:"10000"`
	DedupTTL         time.Duration `env:"DEDUP_TTL" envDefault:"24h"`
	RedisURL         string        `env:"REDIS_URL"`
	RedisKeyPrefix   string        `env:"REDIS_KEY_PREFIX" envDefault:"videobot:processed:"`
	PostgresDSN      string        `env:"POSTGRES_DSN"`
	DBMaxConnections int32         `env:"DB_MAX_CONNECTIONS" envDefault:"5"`
	DBMinConnections int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	HistoryEnabled   bool          `env:"HISTORY_ENABLED" envDefault:"false"`

	// Operations
	HealthPort      int           `env:"HEALTH_PORT" envDefault:"8080"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"10m"`
	ArtifactMaxAge  time.Duration `env:"ARTIFACT_MAX_AGE" envDefault:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.DedupBackend = strings.ToLower(strings.TrimSpace(cfg.DedupBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.DedupBackend {
	case DedupBackendMemory:
	case DedupBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "REDIS_URL is required for the redis dedup backend")
		}
	case DedupBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "POSTGRES_DSN is required for the postgres dedup backend")
		}
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownDedupBackend, c.DedupBackend)
	}

	if c.HistoryEnabled && c.PostgresDSN == "" {
		return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "POSTGRES_DSN is required when HISTORY_ENABLED is set")
	}

	if c.MaxFileSize <= 0 {
		return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "MAX_FILE_SIZE_BYTES must be positive")
	}

	if c.MaxConcurrentAcquisitions < 1 || c.MaxConcurrentMessages < 1 {
		return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "concurrency limits must be at least 1")
	}

	if c.DedupBackend == DedupBackendMemory && c.DedupCapacity < 1 {
		return fmt.Errorf(errFmtInvalid, errors.ErrInvalidConfig, "DEDUP_CAPACITY must be at least 1")
	}

	return nil
}

// NeedsDatabase reports whether any enabled component uses Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.DedupBackend == DedupBackendPostgres || c.HistoryEnabled
}
