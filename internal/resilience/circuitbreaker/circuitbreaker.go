// Package circuitbreaker guards upstream calls with sony/gobreaker and
// exports each breaker's state to Prometheus.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"newsreader/pkg/config"
)

var (
	ErrOpenState       = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

var (
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"circuit"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Calls refused by an open or saturated breaker.",
	}, []string{"circuit"})
)

// Config tunes a breaker. It trips once MinRequests calls were seen in the
// current Interval and the failure share reaches FailureRatio.
type Config struct {
	Name         string
	MaxRequests  uint32        // probes let through while half-open
	Interval     time.Duration // closed-state counting window
	Timeout      time.Duration // open period before probing
	FailureRatio float64
	MinRequests  uint32

	// IsSuccessful marks errors that say nothing about upstream health
	// (bad input, 4xx). Nil counts every error.
	IsSuccessful func(err error) bool
}

// NewsAPIConfig guards the headline and search API. NEWSAPI_CB_TIMEOUT and
// NEWSAPI_CB_MIN_REQUESTS override the open period and the trip floor.
func NewsAPIConfig() Config {
	return withEnv("NEWSAPI", Config{
		Name:         "newsapi",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	})
}

// ContentFetchConfig guards article page downloads. Sites fail one by one,
// so it trips later and stays open longer.
func ContentFetchConfig() Config {
	return withEnv("CONTENT_FETCH", Config{
		Name:         "content-fetch",
		MaxRequests:  5,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		FailureRatio: 0.7,
		MinRequests:  10,
	})
}

func withEnv(prefix string, c Config) Config {
	c.Timeout = config.GetEnvDuration(prefix+"_CB_TIMEOUT", c.Timeout)
	if n := config.GetEnvInt(prefix+"_CB_MIN_REQUESTS", 0); n > 0 {
		c.MinRequests = uint32(n)
	}
	return c
}

type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &CircuitBreaker{
		name: cfg.Name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:          cfg.Name,
			MaxRequests:   cfg.MaxRequests,
			Interval:      cfg.Interval,
			Timeout:       cfg.Timeout,
			ReadyToTrip:   tripAt(cfg.MinRequests, cfg.FailureRatio),
			OnStateChange: recordTransition,
			IsSuccessful:  cfg.IsSuccessful,
		}),
	}
}

func tripAt(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		return c.Requests >= minRequests && float64(c.TotalFailures) >= ratio*float64(c.Requests)
	}
}

func recordTransition(name string, from, to gobreaker.State) {
	stateGauge.WithLabelValues(name).Set(float64(to))
	slog.Warn("circuit breaker state changed",
		slog.String("circuit", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

// Do runs fn through cb. A refused call returns ErrOpenState or
// ErrTooManyRequests without invoking fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.cb.Execute(func() (any, error) { return fn() })
	if IsRejection(err) {
		rejectedTotal.WithLabelValues(cb.name).Inc()
	}
	v, _ := res.(T)
	return v, err
}

// IsRejection reports whether err came from the breaker rather than the call.
func IsRejection(err error) bool {
	return errors.Is(err, ErrOpenState) || errors.Is(err, ErrTooManyRequests)
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.cb.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) IsOpen() bool { return cb.cb.State() == gobreaker.StateOpen }
