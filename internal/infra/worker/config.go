// Package worker holds the pieces of the refresh worker: configuration,
// the refresh job, its metrics and the health endpoint.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/pkg/config"
)

// Config controls the refresh worker.
type Config struct {
	// CronSchedule is a five-field cron expression or a descriptor such as @hourly.
	// Default: "*/30 * * * *"
	CronSchedule string

	// Timezone is the IANA location the schedule is evaluated in.
	// Default: "UTC"
	Timezone string

	// DefaultCountry is refreshed when the cache has never been filled.
	// Default: "us"
	DefaultCountry string

	// RefreshTimeout bounds one job run.
	// Range: 30s-1h, default 5m
	RefreshTimeout time.Duration

	// HealthPort serves /health, /health/ready and /metrics.
	// Range: 1024-65535, default 9091
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule:   "*/30 * * * *",
		Timezone:       "UTC",
		DefaultCountry: entity.DefaultCountry,
		RefreshTimeout: 5 * time.Minute,
		HealthPort:     9091,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if _, err := entity.NormalizeCountry(c.DefaultCountry); err != nil {
		errs = append(errs, fmt.Errorf("default country: %w", err))
	}
	if err := config.ValidateDurationRange(c.RefreshTimeout, 30*time.Second, time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("refresh timeout: %w", err))
	}
	if err := config.IntRange(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the parsed Timezone, UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv reads the worker variables with fail-open semantics:
// every invalid value is replaced by its default, logged and counted in m.
// The returned Config always validates.
//
//	CRON_SCHEDULE         cron expression   (*/30 * * * *)
//	WORKER_TIMEZONE       IANA name         (UTC)
//	NEWS_DEFAULT_COUNTRY  country code      (us)
//	REFRESH_TIMEOUT       30s..1h           (5m)
//	WORKER_HEALTH_PORT    1024..65535       (9091)
func LoadConfigFromEnv(logger *slog.Logger, m *config.Metrics) Config {
	def := DefaultConfig()
	var fallbacks []string
	track := func(field, warning string, applied bool) {
		if !applied {
			return
		}
		fallbacks = append(fallbacks, field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadString("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule)
	track("cron_schedule", schedule.Warning, schedule.FallbackApplied)

	tz := config.LoadString("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)
	track("timezone", tz.Warning, tz.FallbackApplied)

	country := config.Load("NEWS_DEFAULT_COUNTRY", def.DefaultCountry, entity.NormalizeCountry, nil)
	track("default_country", country.Warning, country.FallbackApplied)

	timeout := config.LoadDuration("REFRESH_TIMEOUT", def.RefreshTimeout,
		config.DurationRange(30*time.Second, time.Hour))
	track("refresh_timeout", timeout.Warning, timeout.FallbackApplied)

	port := config.LoadInt("WORKER_HEALTH_PORT", def.HealthPort, config.IntRange(1024, 65535))
	track("health_port", port.Warning, port.FallbackApplied)

	if m != nil {
		m.Observe(fallbacks)
	}

	return Config{
		CronSchedule:   schedule.Value,
		Timezone:       tz.Value,
		DefaultCountry: country.Value,
		RefreshTimeout: timeout.Value,
		HealthPort:     port.Value,
	}
}
