// Package htmlutils provides text helpers for Telegram HTML messages.
//
// Telegram measures message and caption length in UTF-16 code units, not
// Unicode code points, so characters outside the BMP count twice.
package htmlutils

import (
	"strings"
	"unicode/utf16"
)

const ellipsis = "…"

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Slice returns the longest prefix of s that fits in maxUnits UTF-16 code units.
func utf16Slice(s string, maxUnits int) string {
	units := 0

	for i, r := range s {
		runeUnits := utf16.RuneLen(r)
		if runeUnits < 1 {
			runeUnits = 1
		}

		if units+runeUnits > maxUnits {
			return s[:i]
		}

		units += runeUnits
	}

	return s
}

// Truncate shortens s to at most maxUnits UTF-16 code units, ending it with
// an ellipsis when anything was cut. Apply before HTML escaping.
func Truncate(s string, maxUnits int) string {
	if maxUnits <= 0 {
		return ""
	}

	if UTF16Len(s) <= maxUnits {
		return s
	}

	return strings.TrimRightFunc(utf16Slice(s, maxUnits-1), isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
