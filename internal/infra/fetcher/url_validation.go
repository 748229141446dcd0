// Package fetcher downloads article pages and extracts their readable text.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"newsreader/internal/usecase/content"
)

// lookupIP is replaced in tests.
var lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
	return net.DefaultResolver.LookupIP(ctx, "ip", host)
}

// validateURL rejects non-http(s) URLs and, when denyPrivateIPs is set,
// hosts that resolve to a loopback, private or link-local address.
func validateURL(ctx context.Context, raw string, denyPrivateIPs bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", content.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", content.ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", content.ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	ips, err := lookupIP(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", content.ErrInvalidURL, host, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", content.ErrPrivateIP, host, ip)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
