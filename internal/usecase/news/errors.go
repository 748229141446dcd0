// Package news implements the headline feed, search and source-filtered
// paging use cases on top of the local article cache and the news API.
package news

import "errors"

var (
	// ErrFeedUnavailable is returned when the feed could not be loaded and nothing usable is cached.
	ErrFeedUnavailable = errors.New("headline feed unavailable")
)

// MinQueryLength is the shortest search query sent upstream, in characters.
const MinQueryLength = 3
