// Package favorite provides the use cases around the user's saved articles.
package favorite

import "errors"

var (
	// ErrNotFavorite is returned when removing an article that was never saved.
	ErrNotFavorite = errors.New("article is not a favorite")

	// ErrUnsupportedFormat is returned by Export for unknown formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
