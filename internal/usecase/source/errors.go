// Package source provides the publisher catalog use cases: a locally cached
// copy of the upstream source list that expires after a week.
package source

import "errors"

var (
	// ErrSourceNotFound indicates that the requested source is not in the catalog.
	ErrSourceNotFound = errors.New("source not found")
)
