package domain

// Platform is a recognized video-hosting service family.
type Platform string

// Known platforms.
const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformThreads   Platform = "threads"
	PlatformUnknown   Platform = "unknown"
)

var displayNames = map[Platform]string{
	PlatformYouTube:   "YouTube",
	PlatformInstagram: "Instagram",
	PlatformTikTok:    "TikTok",
	PlatformFacebook:  "Facebook",
	PlatformTwitter:   "Twitter",
	PlatformThreads:   "Threads",
	PlatformUnknown:   "Unknown",
}

// SupportedPlatforms lists every known platform in classification order.
func SupportedPlatforms() []Platform {
	return []Platform{
		PlatformYouTube,
		PlatformInstagram,
		PlatformTikTok,
		PlatformFacebook,
		PlatformTwitter,
		PlatformThreads,
	}
}

// DisplayName returns the human-readable platform name used in chat responses.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}

	return string(p)
}

// IsKnown reports whether p is one of the supported platforms.
func (p Platform) IsKnown() bool {
	_, ok := displayNames[p]

	return ok && p != PlatformUnknown
}

func (p Platform) String() string {
	return string(p)
}
