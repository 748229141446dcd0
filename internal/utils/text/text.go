// Package text provides plain-text helpers for article fields: HTML stripping,
// rune-aware truncation and removal of the upstream truncation marker.
package text

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// contentMarker matches the "… [+1234 chars]" suffix the news API appends to truncated content.
var contentMarker = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

// CountRunes counts Unicode characters rather than bytes.
//
//	CountRunes("héllo") // 5
func CountRunes(s string) int {
	return len([]rune(s))
}

// StripHTML removes every tag, decodes entities and collapses whitespace.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	return normalizeWhitespace(html.UnescapeString(strictPolicy.Sanitize(raw)))
}

// TrimContentMarker drops the truncation suffix from article content.
func TrimContentMarker(content string) string {
	return contentMarker.ReplaceAllString(content, "")
}

// Truncate shortens s to at most max runes, ending with "…" when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimRightFunc(string(runes[:max-1]), func(r rune) bool { return r == ' ' }) + "…"
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
