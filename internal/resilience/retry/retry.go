// Package retry re-runs upstream calls that failed transiently, backing off
// exponentially with jitter between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsreader/internal/domain/entity"
)

var retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "upstream_retries_total",
	Help: "Upstream calls repeated after a transient failure.",
}, []string{"operation"})

// Config bounds a retry loop. MaxAttempts counts the first call.
type Config struct {
	Name         string // metrics label; empty reads as "upstream"
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64 // extra random share of each delay, 0..1
}

// NewsAPIConfig keeps interactive requests snappy: two quick retries at most.
func NewsAPIConfig() Config {
	return Config{
		Name:         "newsapi",
		MaxAttempts:  3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
		Jitter:       0.1,
	}
}

// ContentFetchConfig retries an article page download once.
func ContentFetchConfig() Config {
	return Config{
		Name:         "content-fetch",
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       0.1,
	}
}

// Delay is the wait before retry n (1-based), without jitter.
func (c Config) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(c.InitialDelay) * math.Pow(mult, float64(n-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

func (c Config) jittered(n int) time.Duration {
	d := c.Delay(n)
	j := min(max(c.Jitter, 0), 1)
	if j == 0 || d <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*j*float64(d))
}

// WithBackoff calls fn until it succeeds, fails permanently, runs out of
// attempts or ctx ends. Permanent errors come back unwrapped.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	op := cfg.Name
	if op == "" {
		op = "upstream"
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("upstream call recovered", slog.String("operation", op), slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		wait := cfg.jittered(attempt)
		slog.Warn("upstream call failed, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err))
		retriesTotal.WithLabelValues(op).Inc()

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry aborted: %w", errors.Join(ctx.Err(), err))
		}
	}
}

// IsRetryable reports whether err is transient: network timeouts, refused or
// reset connections, upstream 5xx, 408 and 429. Cancellation never retries.
func IsRetryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.ENETUNREACH):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var httpErr *entity.HTTPStatusError
	if errors.As(err, &httpErr) {
		return httpErr.IsServerError() ||
			httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode == http.StatusRequestTimeout
	}
	return false
}
