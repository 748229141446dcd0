// Package urlutil derives display data from article and source URLs.
package urlutil

import (
	"net/url"
	"strings"
)

// LogoBaseURL serves a logo image for a domain appended to it.
const LogoBaseURL = "https://logo.clearbit.com/"

// DomainName returns the host of raw without port, or false when raw has none.
func DomainName(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := u.Hostname()
	if host == "" {
		return "", false
	}
	return strings.ToLower(host), true
}

// LogoURL returns the logo image URL for the domain of raw, or "" when raw has no host.
func LogoURL(raw string) string {
	host, ok := DomainName(raw)
	if !ok {
		return ""
	}
	return LogoBaseURL + strings.TrimPrefix(host, "www.")
}
