package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of a fail-open load.
// Warning is set only when the environment held a value that was rejected.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Load reads key, converts it with parse and checks it with validate.
// Unset keys yield defaultValue silently; a parse or validation failure yields
// defaultValue with a warning. Load never returns an error.
func Load[T any](key string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", key, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return LoadResult[T]{Value: v}
}

// LoadString is Load for plain strings.
func LoadString(key, defaultValue string, validate func(string) error) LoadResult[string] {
	return Load(key, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// LoadInt is Load for base-10 integers.
func LoadInt(key string, defaultValue int, validate func(int) error) LoadResult[int] {
	return Load(key, defaultValue, strconv.Atoi, validate)
}

// LoadDuration is Load for time.ParseDuration values.
func LoadDuration(key string, defaultValue time.Duration, validate func(time.Duration) error) LoadResult[time.Duration] {
	return Load(key, defaultValue, time.ParseDuration, validate)
}
