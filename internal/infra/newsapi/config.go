package newsapi

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"newsreader/pkg/config"
)

// Config holds the upstream connection settings.
type Config struct {
	// APIKey is sent as the apiKey query parameter on every request.
	APIKey string

	// BaseURL is the scheme and host of the API, without the /v2 prefix.
	// Default: https://newsapi.org
	BaseURL string

	// Timeout bounds a single HTTP attempt. Retries get their own timeout.
	// Default: 10s
	Timeout time.Duration

	// RateLimitRPS and RateLimitBurst configure the client-side token bucket.
	// The free developer plan allows 100 requests a day, so the default is conservative.
	// Default: 1 rps, burst 5
	RateLimitRPS   float64
	RateLimitBurst int

	UserAgent string
}

// DefaultConfig returns the production defaults without an API key.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://newsapi.org",
		Timeout:        10 * time.Second,
		RateLimitRPS:   1,
		RateLimitBurst: 5,
		UserAgent:      "newsreader/1.0",
	}
}

// LoadConfigFromEnv reads NEWSAPI_* variables on top of DefaultConfig.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		APIKey:         config.GetEnvString("NEWSAPI_KEY", ""),
		BaseURL:        config.GetEnvString("NEWSAPI_BASE_URL", def.BaseURL),
		Timeout:        config.GetEnvDuration("NEWSAPI_TIMEOUT", def.Timeout),
		RateLimitRPS:   config.GetEnvFloat("NEWSAPI_RATE_LIMIT_RPS", def.RateLimitRPS),
		RateLimitBurst: config.GetEnvInt("NEWSAPI_RATE_LIMIT_BURST", def.RateLimitBurst),
		UserAgent:      def.UserAgent,
	}
}

// Validate checks that the configuration can build a working client.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("newsapi: NEWSAPI_KEY is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("newsapi: invalid base url %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("newsapi: timeout must be positive, got %v", c.Timeout)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("newsapi: rate limit must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("newsapi: rate limit burst must be at least 1, got %d", c.RateLimitBurst)
	}
	return nil
}
