package acquisition

import (
	"strings"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// Route is the branch the pipeline takes after an extraction error.
type Route int

// Extraction error routes, in evaluation order.
const (
	RouteFailed Route = iota
	RouteNotAVideo
	RouteAuthRequired
	RouteSnapshot
)

const (
	tiktokPhotoMarker  = "/photo/"
	registeredOnlyText = "This content is only available for registered users"
)

// ClassifyExtractionError decides how an extractor error message is handled.
// The first matching rule wins:
//
//  1. tiktok with "/photo/" in the message is a photo post
//  2. the registered-users notice means the post needs authentication
//  3. any threads error falls back to a snapshot
//  4. everything else is a plain extraction failure
func ClassifyExtractionError(platform domain.Platform, message string) Route {
	switch {
	case platform == domain.PlatformTikTok && strings.Contains(message, tiktokPhotoMarker):
		return RouteNotAVideo
	case strings.Contains(message, registeredOnlyText):
		return RouteAuthRequired
	case platform == domain.PlatformThreads:
		return RouteSnapshot
	default:
		return RouteFailed
	}
}
