package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"newsreader/internal/handler/http/requestid"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/handler/http/responsewriter"
	"newsreader/internal/observability/logging"
)

// Middleware is the decorator shape shared by everything in this file.
type Middleware func(http.Handler) http.Handler

// Chain applies mw so that the first element is the outermost handler.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logging logs one line per request with the request and trace IDs, and puts a
// request-scoped logger into the context for handlers (logging.FromContext).
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := responsewriter.Wrap(w)

			reqLogger := logging.WithRequestID(r.Context(), logger)
			ctx := logging.WithLogger(r.Context(), reqLogger)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			traceID := trace.SpanFromContext(r.Context()).SpanContext().TraceID()
			duration := wrapped.Elapsed()

			level := slog.LevelInfo
			if wrapped.StatusCode() >= 500 {
				level = slog.LevelError
			}
			reqLogger.LogAttrs(r.Context(), level, "request completed",
				slog.String("trace_id", traceID.String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", respond.SanitizeString(r.URL.RawQuery)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
				slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
			)
		})
	}
}

// Recover turns a handler panic into a 500 response and an error log with the stack.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler は net/http に任せる
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				respond.SafeError(w, http.StatusInternalServerError, errors.New("internal error"))
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes. Favorite payloads are a few KB.
func LimitRequestBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64 // sustained requests per second per client
	Burst int     // bucket size
	// TrustProxy makes X-Forwarded-For / X-Real-IP decide the client address.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
	IdleTTL    time.Duration // clients unseen for this long are forgotten
}

// DefaultRateLimitConfig allows 10 rps with bursts of 20.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RPS: 10, Burst: 20, IdleTTL: 5 * time.Minute}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with golang.org/x/time/rate.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

// NewRateLimiter creates a limiter. Call Cleanup in a goroutine to bound memory.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 5 * time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Limit answers 429 with Retry-After once a client has drained its bucket.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r, rl.cfg.TrustProxy)
		lim := rl.limiter(ip)

		now := rl.now()
		res := lim.ReserveN(now, 1)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			rateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

// Sweep forgets clients idle for longer than IdleTTL and returns how many were removed.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.cfg.IdleTTL)
	removed := 0
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// Cleanup runs Sweep every interval until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				slog.Debug("rate limit clients swept", slog.Int("removed", n))
			}
		}
	}
}

// extractIP returns the client address. Forwarding headers are honoured only when trustProxy is set.
func extractIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := parseFirstIP(xff); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first address of a comma-separated X-Forwarded-For list.
func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
