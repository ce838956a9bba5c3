// Package linkextract finds URLs in free-form chat text.
package linkextract

import (
	"net/url"
	"regexp"
	"strings"
)

// Link is a URL found in text together with where it was found.
type Link struct {
	URL      string
	Domain   string
	Position int
}

var urlRegex = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^\x60\[\]]+`)

// trailingPunctuation is stripped from matches so that "see https://x.com/a." yields the bare URL.
// A closing parenthesis is stripped only when it has no opening partner in the URL.
const trailingPunctuation = ".,;:!?"

// ExtractLinks returns every URL in text in first-occurrence order.
// Duplicates are kept: the same URL appearing twice yields two entries.
func ExtractLinks(text string) []Link {
	matches := urlRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]Link, 0, len(matches))

	for _, match := range matches {
		rawURL := trimTrailing(text[match[0]:match[1]])

		domain, ok := parseDomain(rawURL)
		if !ok {
			continue
		}

		links = append(links, Link{
			URL:      rawURL,
			Domain:   domain,
			Position: match[0],
		})
	}

	return links
}

// ExtractURLs is ExtractLinks reduced to the URL strings.
func ExtractURLs(text string) []string {
	links := ExtractLinks(text)
	if len(links) == 0 {
		return nil
	}

	urls := make([]string, len(links))
	for i, l := range links {
		urls[i] = l.URL
	}

	return urls
}

// trimTrailing drops sentence punctuation and unbalanced closing parentheses,
// so "(see https://x.com/a)" ends at "a" but ".../Go_(language)" is kept whole.
func trimTrailing(raw string) string {
	for {
		trimmed := strings.TrimRight(raw, trailingPunctuation)
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = trimmed[:len(trimmed)-1]
		}

		if trimmed == raw {
			return raw
		}

		raw = trimmed
	}
}

// parseDomain validates the authority part and returns the lowercased host.
func parseDomain(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}

	return strings.ToLower(u.Hostname()), true
}
