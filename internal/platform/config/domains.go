package config

import "time"

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN    string
	MaxConnections int32
	MinConnections int32
}

// AcquisitionConfig holds extraction pipeline settings.
type AcquisitionConfig struct {
	DownloadDir    string
	MaxFileSize    int64
	UserAgent      string
	YtDlpPath      string
	ProbeTimeout   time.Duration
	FetchTimeout   time.Duration
	MaxConcurrent  int
	RPSPerPlatform float64
	Burst          int
}

// SnapshotConfig holds headless browser settings.
type SnapshotConfig struct {
	Enabled         bool
	ChromePath      string
	OutputDir       string
	PageLoadTimeout time.Duration
	Timeout         time.Duration
	StrategyTimeout time.Duration
	SettleDelay     time.Duration
}

// DedupConfig holds processed-message store settings.
type DedupConfig struct {
	Backend        string
	Capacity       int
	TTL            time.Duration
	RedisURL       string
	RedisKeyPrefix string
}

// DatabaseCfg returns the database configuration.
func (c *Config) DatabaseCfg() DatabaseConfig {
	return DatabaseConfig{
		PostgresDSN:    c.PostgresDSN,
		MaxConnections: c.DBMaxConnections,
		MinConnections: c.DBMinConnections,
	}
}

// AcquisitionCfg returns the acquisition pipeline configuration.
func (c *Config) AcquisitionCfg() AcquisitionConfig {
	return AcquisitionConfig{
		DownloadDir:    c.DownloadDir,
		MaxFileSize:    c.MaxFileSize,
		UserAgent:      c.UserAgent,
		YtDlpPath:      c.YtDlpPath,
		ProbeTimeout:   c.ProbeTimeout,
		FetchTimeout:   c.FetchTimeout,
		MaxConcurrent:  c.MaxConcurrentAcquisitions,
		RPSPerPlatform: c.ExtractRPSPerPlatform,
		Burst:          c.ExtractBurst,
	}
}

// SnapshotCfg returns the snapshot renderer configuration.
func (c *Config) SnapshotCfg() SnapshotConfig {
	return SnapshotConfig{
		Enabled:         c.SnapshotEnabled,
		ChromePath:      c.ChromePath,
		OutputDir:       c.DownloadDir,
		PageLoadTimeout: c.SnapshotPageLoadTimeout,
		Timeout:         c.SnapshotTimeout,
		StrategyTimeout: c.SnapshotStrategyTimeout,
		SettleDelay:     c.SnapshotSettleDelay,
	}
}

// DedupCfg returns the processed-message store configuration.
func (c *Config) DedupCfg() DedupConfig {
	return DedupConfig{
		Backend:        c.DedupBackend,
		Capacity:       c.DedupCapacity,
		TTL:            c.DedupTTL,
		RedisURL:       c.RedisURL,
		RedisKeyPrefix: c.RedisKeyPrefix,
	}
}
