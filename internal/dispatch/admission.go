package dispatch

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// Admit decides whether a classified link should be acquired.
// Unknown platforms are never admitted. Otherwise a link is admitted in private
// chats, for tiktok anywhere, or when text carries marker (case-insensitive).
func Admit(kind domain.ChatKind, platform domain.Platform, text, marker string) bool {
	if !platform.IsKnown() {
		return false
	}

	if kind == domain.ChatKindPrivate || platform == domain.PlatformTikTok {
		return true
	}

	return HasMarker(text, marker)
}

// HasMarker reports whether text contains marker under Unicode case folding.
// An empty marker never matches.
func HasMarker(text, marker string) bool {
	if marker == "" {
		return false
	}

	fold := cases.Fold()

	return strings.Contains(fold.String(text), fold.String(marker))
}
