package dispatch

import (
	"fmt"
	"html"
	"strings"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/platform/htmlutils"
)

const bytesPerMB = 1024 * 1024

// maxTitleUnits keeps captions well under Telegram's 1024 UTF-16 unit limit.
const maxTitleUnits = 256

// User-visible texts.
const (
	TextNotAVideo      = "❌ This appears to be a TikTok photo, not a video. The bot can only download videos."
	TextAuthRequired   = "❌ This video is only available for registered users who follow this account."
	TextSnapshotFailed = "❌ Failed to capture a screenshot of this post."
	TextGenericFailure = "❌ Failed to download video. The video might be private, too large (>50MB), or not supported."
	TextInternalError  = "❌ An error occurred while processing the video. Please try again later."

	textTooLarge     = "❌ Video file is too large to download. Video size: %.1fMB (limit: %dMB)"
	textPlaceholder  = "🔄 Downloading video from %s..."
	untitled         = "Untitled"
	videoHeadline    = "🎥"
	snapshotHeadline = "📸"
)

// PlaceholderText is shown while a link is being acquired.
func PlaceholderText(platform domain.Platform) string {
	return fmt.Sprintf(textPlaceholder, platform.DisplayName())
}

// FailureText maps a failure onto the message shown in chat.
func FailureText(f *domain.Failure) string {
	if f == nil {
		return TextInternalError
	}

	switch f.Kind {
	case domain.FailureTooLarge:
		return fmt.Sprintf(textTooLarge, megabytes(f.EstimatedSize), f.Ceiling/bytesPerMB)
	case domain.FailureNotAVideo:
		return TextNotAVideo
	case domain.FailureAuthRequired:
		return TextAuthRequired
	case domain.FailureSnapshotFailed:
		return TextSnapshotFailed
	default:
		return TextGenericFailure
	}
}

// Caption renders the HTML caption for a delivered artifact.
// The duration line is omitted when the duration is unknown.
func Caption(a *domain.Artifact, screenshot bool) string {
	headline := videoHeadline
	if screenshot {
		headline = snapshotHeadline
	}

	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = untitled
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", headline, html.EscapeString(htmlutils.Truncate(title, maxTitleUnits)))
	fmt.Fprintf(&b, "📱 Platform: %s", html.EscapeString(a.Platform.DisplayName()))

	if !screenshot && a.HasDuration() {
		fmt.Fprintf(&b, "\n⏱️ Duration: %ds", int64(a.Duration.Seconds()))
	}

	fmt.Fprintf(&b, "\n📊 Size: %.1fMB", megabytes(a.Size))

	return b.String()
}

func megabytes(n int64) float64 {
	return float64(n) / bytesPerMB
}
