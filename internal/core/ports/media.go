package ports

import (
	"context"
	"time"

	"github.com/victordov/telegram-video-downloader/internal/core/policy"
)

// Metadata is what an extractor reports about a URL before or after download.
type Metadata struct {
	Title string

	// Duration is domain.UnknownDuration when the extractor did not report one.
	Duration time.Duration

	// EstimatedSize is zero when neither an exact nor approximate size is known.
	EstimatedSize int64

	// Filename is the output path the extractor predicts for this media.
	Filename string

	Extractor string
}

// ProgressStatus is the state reported by a progress callback.
type ProgressStatus string

// Progress states.
const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
	ProgressError       ProgressStatus = "error"
)

// Progress is a download progress notification. It is informational only.
type Progress struct {
	Status  ProgressStatus
	Percent string
	Speed   string
	ETA     string
}

// ProgressFunc receives progress notifications during Fetch.
type ProgressFunc func(Progress)

// Download is the result of a successful Fetch.
type Download struct {
	// Path is the authoritative on-disk location when the extractor reports one.
	Path string

	// Hint is the predicted location, used when Path is empty.
	Hint string

	Metadata Metadata
}

// Extractor retrieves media from a platform URL.
type Extractor interface {
	Probe(ctx context.Context, url string, p policy.RetrievalPolicy) (*Metadata, error)
	Fetch(ctx context.Context, url string, p policy.RetrievalPolicy, progress ProgressFunc) (*Download, error)
}

// DeviceProfile describes the browser a page is rendered in.
type DeviceProfile struct {
	Name      string
	Width     int64
	Height    int64
	Scale     float64
	Mobile    bool
	Touch     bool
	UserAgent string
}

// Built-in device profiles.
var (
	MobileProfile = DeviceProfile{
		Name:      "iPhone X",
		Width:     375,
		Height:    812,
		Scale:     3,
		Mobile:    true,
		Touch:     true,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
	}

	DesktopProfile = DeviceProfile{
		Name:   "Desktop",
		Width:  1280,
		Height: 1024,
		Scale:  1,
	}
)

// Rendering is a captured page image.
type Rendering struct {
	Path  string
	Title string
}

// Renderer captures a still image of a web page.
type Renderer interface {
	Render(ctx context.Context, url string, profile DeviceProfile) (*Rendering, error)
}
