// Package entity defines the core domain entities and validation logic for the application.
// It contains the news articles, their sources and the source catalog entries, along with
// domain-specific errors and the mapping of those errors to user-facing messages.
package entity

import "time"

// Source is the publisher reference embedded in every article.
// ID is empty for publishers the upstream does not catalog.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewsArticle represents a cached headline or search result.
// Identity is the URL; ID is assigned by storage and only meaningful for ordering.
type NewsArticle struct {
	ID          int64
	Author      string
	Content     string
	Description string
	PublishedAt string
	Source      Source
	Title       string
	URL         string
	URLToImage  string
	IsFavorite  bool
	FavoritedAt *time.Time
}

// SameArticle reports whether a and b refer to the same article.
func SameArticle(a, b *NewsArticle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.URL == b.URL
}

// NewsResponse mirrors the envelope returned by the news API.
type NewsResponse struct {
	Status       string
	TotalResults int
	Articles     []*NewsArticle
}

// HeadlinesQuery selects one page of top headlines.
type HeadlinesQuery struct {
	Country  string
	Category string
	Page     int
	PageSize int
}

// EverythingQuery selects one page of full-text search results.
// Sources restricts the search to catalog source IDs.
type EverythingQuery struct {
	Query    string
	Sources  []string
	Page     int
	PageSize int
}

// DedupeByURL drops articles without a URL and keeps the first occurrence of each URL.
// Order is preserved.
func DedupeByURL(articles []*NewsArticle) []*NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]*NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a == nil || a.URL == "" {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
