package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// standardParser accepts five-field cron expressions and descriptors such as @hourly.
var standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	if _, err := standardParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that timezone names an IANA location.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange checks min <= d <= max.
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}

// IntRange returns a validator for min <= v <= max.
func IntRange(min, max int) func(int) error {
	return func(v int) error {
		if v < min {
			return fmt.Errorf("value %d is below minimum %d", v, min)
		}
		if v > max {
			return fmt.Errorf("value %d exceeds maximum %d", v, max)
		}
		return nil
	}
}

// DurationRange returns a validator bound to ValidateDurationRange.
func DurationRange(min, max time.Duration) func(time.Duration) error {
	return func(d time.Duration) error { return ValidateDurationRange(d, min, max) }
}
