package fetcher

import (
	"fmt"
	"time"

	"newsreader/pkg/config"
)

// Config controls article page downloads.
type Config struct {
	// Enabled switches page downloads on. When false the API serves only the
	// cached headline text for an article.
	// Default: true
	Enabled bool

	// Timeout bounds one HTTP attempt.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is enforced while reading, not from Content-Length.
	// Default: 10MB
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain. Every hop is re-validated.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses. Only tests should turn it off.
	// Default: true
	DenyPrivateIPs bool

	UserAgent string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "newsreader/1.0 (+content)",
	}
}

// Validate checks the ranges accepted by NewReadabilityFetcher.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads CONTENT_FETCH_* variables on top of DefaultConfig.
// Out-of-range values fall back to the default and are returned as warnings.
//
//	CONTENT_FETCH_ENABLED          bool      (true)
//	CONTENT_FETCH_TIMEOUT          duration  (10s)
//	CONTENT_FETCH_MAX_BODY_SIZE    bytes     (10485760)
//	CONTENT_FETCH_MAX_REDIRECTS    0..10     (5)
//	CONTENT_FETCH_DENY_PRIVATE_IPS bool      (true)
func LoadConfigFromEnv() (Config, []string) {
	def := DefaultConfig()
	var warnings []string
	collect := func(w string) {
		if w != "" {
			warnings = append(warnings, w)
		}
	}

	timeout := config.LoadDuration("CONTENT_FETCH_TIMEOUT", def.Timeout,
		config.DurationRange(time.Second, 2*time.Minute))
	collect(timeout.Warning)

	bodySize := config.LoadInt("CONTENT_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize),
		config.IntRange(1024, 100*1024*1024))
	collect(bodySize.Warning)

	redirects := config.LoadInt("CONTENT_FETCH_MAX_REDIRECTS", def.MaxRedirects, config.IntRange(0, 10))
	collect(redirects.Warning)

	return Config{
		Enabled:        config.GetEnvBool("CONTENT_FETCH_ENABLED", def.Enabled),
		Timeout:        timeout.Value,
		MaxBodySize:    int64(bodySize.Value),
		MaxRedirects:   redirects.Value,
		DenyPrivateIPs: config.GetEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		UserAgent:      def.UserAgent,
	}, warnings
}
