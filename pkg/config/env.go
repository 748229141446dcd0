// Package config reads process configuration from environment variables.
//
// Two styles are offered. The GetEnv* helpers return a default and log a
// warning when a value cannot be parsed. The Load* helpers additionally run a
// validator and report whether a fallback was applied, so long-running
// processes can surface misconfiguration through metrics instead of exiting.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key or defaultValue when unset or empty.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt parses key as a base-10 integer.
//
// Example:
//
//	pageSize := GetEnvInt("NEWS_PAGE_SIZE", 15)
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, strconv.Itoa(defaultValue), err)
		return defaultValue
	}
	return v
}

// GetEnvFloat parses key as a float64.
func GetEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		warnInvalid(key, raw, strconv.FormatFloat(defaultValue, 'f', -1, 64), err)
		return defaultValue
	}
	return v
}

// GetEnvBool accepts the values understood by strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, strconv.FormatBool(defaultValue), err)
		return defaultValue
	}
	return v
}

// GetEnvDuration parses key with time.ParseDuration ("30s", "15m", "168h").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, defaultValue.String(), err)
		return defaultValue
	}
	return v
}

// GetEnvStringList splits a comma-separated value, trimming blanks.
// An unset or all-blank value yields defaultValue.
//
//	CORS_ALLOWED_ORIGINS="http://a.test, http://b.test " -> ["http://a.test" "http://b.test"]
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func warnInvalid(key, value, def string, err error) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", def),
		slog.String("error", err.Error()))
}
