// Package classify maps URLs onto the platform families the bot can download from.
//
// Rules are evaluated in the order they are declared. Within a rule, patterns are
// tried in listed order and the first platform with any matching pattern wins.
// Scheme and host are compared case-insensitively; path identifiers are not.
package classify

import (
	"regexp"
	"strings"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

// Rule binds a platform to the URL shapes that identify it.
type Rule struct {
	Platform domain.Platform
	Patterns []*regexp.Regexp
}

// Classifier resolves a URL to a platform using an ordered rule list.
type Classifier struct {
	rules []Rule
}

// New creates a classifier over the given rules. The slice order is the evaluation order.
func New(rules []Rule) *Classifier {
	copied := make([]Rule, len(rules))
	copy(copied, rules)

	return &Classifier{rules: copied}
}

// NewDefault creates a classifier with the built-in platform rules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify returns the first platform whose patterns match rawURL, or PlatformUnknown.
func (c *Classifier) Classify(rawURL string) domain.Platform {
	normalized := normalizeAuthority(strings.TrimSpace(rawURL))
	if normalized == "" {
		return domain.PlatformUnknown
	}

	for _, rule := range c.rules {
		for _, p := range rule.Patterns {
			if p.MatchString(normalized) {
				return rule.Platform
			}
		}
	}

	return domain.PlatformUnknown
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)

	return out
}

// normalizeAuthority lowercases the scheme and host of rawURL and leaves the rest untouched.
// Inputs without a scheme are treated as starting with the host.
func normalizeAuthority(rawURL string) string {
	rest := rawURL
	prefix := ""

	if i := strings.Index(rest, "://"); i >= 0 {
		prefix = strings.ToLower(rest[:i+3])
		rest = rest[i+3:]
	}

	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}

	return prefix + strings.ToLower(rest[:end]) + rest[end:]
}
