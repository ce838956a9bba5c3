// Package policy derives extraction settings for a platform.
package policy

import (
	"fmt"
	"strings"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

const (
	// DefaultMaxFileSize matches the Bot API upload limit for bots.
	DefaultMaxFileSize int64 = 50 * 1024 * 1024

	// DefaultUserAgent is the desktop browser identity presented to platforms.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultOutputTemplate names downloads after the media title.
	DefaultOutputTemplate = "%(title)s.%(ext)s"

	youtubeMaxHeight = 720
)

// ExtractorArg is a per-extractor override, rendered as "extractor:key=v1,v2".
type ExtractorArg struct {
	Extractor string
	Key       string
	Values    []string
}

// RetrievalPolicy is the extraction configuration for one platform.
type RetrievalPolicy struct {
	Platform       domain.Platform
	OutputTemplate string
	Format         string
	MaxFileSize    int64
	MaxHeight      int
	NoPlaylist     bool
	WriteSubtitles bool
	AudioOnly      bool
	ExtractorArgs  []ExtractorArg
	UserAgent      string
}

// ExtractorArgsString groups ExtractorArgs per extractor in declaration order,
// e.g. "youtube:player_client=android,web;player_skip=webpage,configs".
func (p RetrievalPolicy) ExtractorArgsString() []string {
	var (
		order  []string
		groups = make(map[string][]string)
	)

	for _, a := range p.ExtractorArgs {
		if _, ok := groups[a.Extractor]; !ok {
			order = append(order, a.Extractor)
		}

		groups[a.Extractor] = append(groups[a.Extractor], a.Key+"="+strings.Join(a.Values, ","))
	}

	out := make([]string, 0, len(order))
	for _, extractor := range order {
		out = append(out, extractor+":"+strings.Join(groups[extractor], ";"))
	}

	return out
}

// Builder produces RetrievalPolicy values from static settings.
type Builder struct {
	maxFileSize int64
	userAgent   string
}

// NewBuilder creates a Builder. Zero values fall back to the defaults.
func NewBuilder(maxFileSize int64, userAgent string) *Builder {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Builder{maxFileSize: maxFileSize, userAgent: userAgent}
}

// MaxFileSize returns the size ceiling in bytes.
func (b *Builder) MaxFileSize() int64 {
	return b.maxFileSize
}

// Build returns the policy for platform. It performs no I/O.
func (b *Builder) Build(platform domain.Platform) RetrievalPolicy {
	p := RetrievalPolicy{
		Platform:       platform,
		OutputTemplate: DefaultOutputTemplate,
		Format:         bestUnder(b.maxFileSize),
		MaxFileSize:    b.maxFileSize,
		NoPlaylist:     true,
		UserAgent:      b.userAgent,
	}

	if platform == domain.PlatformYouTube {
		p.MaxHeight = youtubeMaxHeight
		p.Format = fmt.Sprintf("best[height<=%d][filesize<%d]/best[filesize<%d]/best",
			youtubeMaxHeight, b.maxFileSize, b.maxFileSize)
		p.ExtractorArgs = []ExtractorArg{
			{Extractor: "youtube", Key: "player_client", Values: []string{"android", "web"}},
			{Extractor: "youtube", Key: "player_skip", Values: []string{"webpage", "configs"}},
		}
	}

	return p
}

func bestUnder(limit int64) string {
	return fmt.Sprintf("best[filesize<%d]/best", limit)
}
