package classify

import (
	"regexp"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// hostStart anchors a host pattern to the URL authority: an optional scheme,
// then optional subdomain labels. A host named in the path or query never
// matches, and neither does "rust.co/x" for "t.co/x".
const (
	hostStart = `^(?:[a-z][a-z0-9+.-]*://)?(?:[^/?#@]+\.)?`
	optWWW    = `(?:www\.)?`
)

func mustCompile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}

	return out
}

// DefaultRules returns the built-in rules in evaluation order:
// youtube, instagram, tiktok, facebook, twitter, threads.
func DefaultRules() []Rule {
	return []Rule{
		{
			Platform: domain.PlatformYouTube,
			Patterns: mustCompile(
				hostStart+optWWW+`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([a-zA-Z0-9_-]{11})`,
				hostStart+optWWW+`youtube\.com/shorts/([a-zA-Z0-9_-]+)`,
			),
		},
		{
			Platform: domain.PlatformInstagram,
			Patterns: mustCompile(
				hostStart+optWWW+`instagram\.com/(?:p|reel|tv)/([a-zA-Z0-9_-]+)`,
				hostStart+optWWW+`instagram\.com/stories/[^/]+/([0-9]+)`,
				hostStart+optWWW+`instagram\.com/reels/([a-zA-Z0-9_-]+)`,
			),
		},
		{
			Platform: domain.PlatformTikTok,
			Patterns: mustCompile(
				hostStart+optWWW+`tiktok\.com/@[^/]+/video/([0-9]+)`,
				hostStart+`vm\.tiktok\.com/([a-zA-Z0-9]+)`,
				hostStart+`vt\.tiktok\.com/([a-zA-Z0-9]+)`,
				hostStart+optWWW+`tiktok\.com/t/([a-zA-Z0-9]+)`,
			),
		},
		{
			Platform: domain.PlatformFacebook,
			Patterns: mustCompile(
				hostStart+optWWW+`facebook\.com/[^/]+/videos/([0-9]+)`,
				hostStart+optWWW+`facebook\.com/watch/?\?v=([0-9]+)`,
				hostStart+`fb\.watch/([a-zA-Z0-9_-]+)`,
			),
		},
		{
			Platform: domain.PlatformTwitter,
			Patterns: mustCompile(
				hostStart+optWWW+`(?:twitter\.com|x\.com)/[^/]+/status/([0-9]+)`,
				hostStart+`t\.co/([a-zA-Z0-9]+)`,
			),
		},
		{
			Platform: domain.PlatformThreads,
			Patterns: mustCompile(
				hostStart+optWWW+`threads\.(?:com|net)/@[^/]+/post/([a-zA-Z0-9_-]+)`,
			),
		},
	}
}
