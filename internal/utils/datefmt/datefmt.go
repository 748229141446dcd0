// Package datefmt renders upstream publication timestamps for display.
package datefmt

import (
	"strings"
	"time"
)

const (
	// upstreamLayout is the timestamp shape the news API uses for publishedAt.
	upstreamLayout = "2006-01-02T15:04:05Z"
	// DisplayLayout renders as "Sep 29, 2021 01:01 PM".
	DisplayLayout = "Jan 02, 2006 03:04 PM"
)

// FormatNewsDate converts an upstream timestamp to DisplayLayout in UTC.
// Values that are empty, lack a 'T' separator or cannot be parsed are returned unchanged.
func FormatNewsDate(s string) string {
	if s == "" || !strings.Contains(s, "T") {
		return s
	}
	t, err := time.Parse(upstreamLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}
	}
	return t.UTC().Format(DisplayLayout)
}
