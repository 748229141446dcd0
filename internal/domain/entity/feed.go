package entity

import "time"

// FeedKey is the paging bookmark of the cached headline feed.
// A single key exists at a time; it belongs to the country the feed was built for.
type FeedKey struct {
	Country     string
	LastPage    int
	EndReached  bool
	RefreshedAt time.Time
}

// IsStale reports whether the feed was refreshed longer than ttl before now.
func (k *FeedKey) IsStale(now time.Time, ttl time.Duration) bool {
	if k == nil || k.RefreshedAt.IsZero() {
		return true
	}
	return now.Sub(k.RefreshedAt) > ttl
}

// Same reports whether k and o describe the same feed state.
func (k FeedKey) Same(o FeedKey) bool {
	return k.Country == o.Country &&
		k.LastPage == o.LastPage &&
		k.EndReached == o.EndReached &&
		k.RefreshedAt.Equal(o.RefreshedAt)
}
