package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

func TestClassify(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name string
		url  string
		want domain.Platform
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube embed", "https://youtube.com/embed/dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube v", "http://youtube.com/v/dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube shorts", "https://youtube.com/shorts/abcDEF123", domain.PlatformYouTube},
		{"youtube mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube},
		{"youtube id too short", "https://youtu.be/short", domain.PlatformUnknown},
		{"youtube channel page", "https://www.youtube.com/@someone", domain.PlatformUnknown},

		{"instagram post", "https://www.instagram.com/p/abc/", domain.PlatformInstagram},
		{"instagram reel", "https://instagram.com/reel/Cx_1-2/", domain.PlatformInstagram},
		{"instagram tv", "https://instagram.com/tv/XYZ", domain.PlatformInstagram},
		{"instagram story", "https://instagram.com/stories/someone/3141592653", domain.PlatformInstagram},
		{"instagram reels", "https://www.instagram.com/reels/Cabc123/", domain.PlatformInstagram},
		{"instagram profile", "https://www.instagram.com/someone/", domain.PlatformUnknown},

		{"tiktok video", "https://www.tiktok.com/@u/video/123", domain.PlatformTikTok},
		{"tiktok vm", "https://vm.tiktok.com/ZMabc123/", domain.PlatformTikTok},
		{"tiktok vt", "https://vt.tiktok.com/ZSxyz/", domain.PlatformTikTok},
		{"tiktok t", "https://www.tiktok.com/t/ZTR123/", domain.PlatformTikTok},
		{"tiktok photo", "https://www.tiktok.com/@u/photo/123", domain.PlatformUnknown},

		{"facebook page video", "https://www.facebook.com/somepage/videos/1234567890/", domain.PlatformFacebook},
		{"facebook watch", "https://www.facebook.com/watch/?v=1234567890", domain.PlatformFacebook},
		{"facebook watch no slash", "https://facebook.com/watch?v=42", domain.PlatformFacebook},
		{"fb.watch", "https://fb.watch/aBc-12_/", domain.PlatformFacebook},

		{"twitter status", "https://twitter.com/user/status/1234567890", domain.PlatformTwitter},
		{"x status", "https://x.com/user/status/1234567890", domain.PlatformTwitter},
		{"t.co", "https://t.co/AbC123", domain.PlatformTwitter},
		{"look-alike host", "https://rust.co/AbC123", domain.PlatformUnknown},
		{"look-alike x.com", "https://netflix.com/user/status/1", domain.PlatformUnknown},
		{"host in query", "https://evil.example/redirect?to=a.tiktok.com/t/abc", domain.PlatformUnknown},
		{"host in path", "https://evil.example/a.youtu.be/dQw4w9WgXcQ", domain.PlatformUnknown},
		{"subdomain host in path", "https://evil.example/x.instagram.com/p/abc", domain.PlatformUnknown},
		{"bare host in path", "https://evil.example/vm.tiktok.com/ZMabc123", domain.PlatformUnknown},
		{"userinfo before real host", "https://tiktok.com@evil.example/t/abc", domain.PlatformUnknown},
		{"suffix look-alike", "https://eviltiktok.com/t/abc", domain.PlatformUnknown},

		{"threads com", "https://www.threads.com/@someone/post/C8abc_-1", domain.PlatformThreads},
		{"threads net", "https://threads.net/@someone/post/C8abc", domain.PlatformThreads},

		{"uppercase host", "HTTPS://WWW.YOUTUBE.COM/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube},
		{"no scheme", "youtu.be/dQw4w9WgXcQ", domain.PlatformYouTube},
		{"unrelated", "https://example.com/video.mp4", domain.PlatformUnknown},
		{"empty", "", domain.PlatformUnknown},
		{"garbage", "::::", domain.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.url))
		})
	}
}

func TestClassifyPathIsCaseSensitive(t *testing.T) {
	c := NewDefault()

	assert.Equal(t, domain.PlatformYouTube, c.Classify("https://youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Equal(t, domain.PlatformUnknown, c.Classify("https://youtube.com/WATCH?v=dQw4w9WgXcQ"))
	assert.Equal(t, domain.PlatformUnknown, c.Classify("https://www.tiktok.com/@u/VIDEO/123"))
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewDefault()
	url := "https://www.instagram.com/reel/Cx123/"

	first := c.Classify(url)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, c.Classify(url))
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	overlapping := regexp.MustCompile(`example\.com/v/`)
	c := New([]Rule{
		{Platform: domain.PlatformFacebook, Patterns: []*regexp.Regexp{overlapping}},
		{Platform: domain.PlatformTwitter, Patterns: []*regexp.Regexp{overlapping}},
	})

	assert.Equal(t, domain.PlatformFacebook, c.Classify("https://example.com/v/1"))

	reversed := New([]Rule{
		{Platform: domain.PlatformTwitter, Patterns: []*regexp.Regexp{overlapping}},
		{Platform: domain.PlatformFacebook, Patterns: []*regexp.Regexp{overlapping}},
	})

	assert.Equal(t, domain.PlatformTwitter, reversed.Classify("https://example.com/v/1"))
}

func TestDefaultRulesOrder(t *testing.T) {
	rules := NewDefault().Rules()

	got := make([]domain.Platform, len(rules))
	for i, r := range rules {
		got[i] = r.Platform
	}

	assert.Equal(t, domain.SupportedPlatforms(), got)
}

func TestNormalizeAuthority(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=AbC", normalizeAuthority("HTTPS://WWW.YouTube.COM/watch?v=AbC"))
	assert.Equal(t, "youtu.be/AbC", normalizeAuthority("YOUTU.BE/AbC"))
	assert.Equal(t, "https://x.com", normalizeAuthority("https://X.com"))
}
