package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// maxTitleLength bounds titles accepted from clients.
const maxTitleLength = 1000

// ValidateArticleURL validates the format of an article URL.
// Only the shape is checked; the URL is an identity key here and is never dialed.
func ValidateArticleURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "URL is invalid"}
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// Validate checks the fields required to store an article as a favorite.
func (a *NewsArticle) Validate() error {
	if err := ValidateArticleURL(a.URL); err != nil {
		return err
	}
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > maxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title is too long (max %d characters)", maxTitleLength),
		}
	}
	return nil
}
