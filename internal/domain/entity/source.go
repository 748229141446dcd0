package entity

import (
	"strings"
	"time"
)

// NewsSource is an entry of the publisher catalog.
type NewsSource struct {
	ID          string
	Name        string
	Description string
	URL         string
	Category    string
	Language    string
	Country     string
	CreatedAt   time.Time
}

// SourceFilter narrows the catalog. Empty fields match everything.
type SourceFilter struct {
	Category string
	Language string
	Country  string
}

// Matches reports whether s satisfies every non-empty field of f (case-insensitive).
func (f SourceFilter) Matches(s *NewsSource) bool {
	if s == nil {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, s.Category) {
		return false
	}
	if f.Language != "" && !strings.EqualFold(f.Language, s.Language) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, s.Country) {
		return false
	}
	return true
}
