// Package content serves the readable body of an article page: the text
// extracted from the publisher's HTML, its lead image and source display data.
package content

import "errors"

// Failure modes of a page fetch. Fetcher implementations wrap these.
var (
	// ErrInvalidURL: malformed URL or a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP: the host resolves to a loopback, private or link-local address.
	ErrPrivateIP = errors.New("private IP access denied")

	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBodyTooLarge     = errors.New("response body too large")
	ErrTimeout          = errors.New("request timeout")

	// ErrReadabilityFailed: the page was downloaded but held no readable text.
	ErrReadabilityFailed = errors.New("content extraction failed")

	// ErrDisabled is returned by Service.Get when page fetching is switched off
	// and no cached copy of the article exists.
	ErrDisabled = errors.New("content fetching disabled")
)
