package ytdlp

import (
	"time"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

func emptyMetadata() ports.Metadata {
	return ports.Metadata{Duration: domain.UnknownDuration}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
