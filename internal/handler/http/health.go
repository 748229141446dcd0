// Package http wires the HTTP surface of the news reader: middleware, health
// probes and metrics. Resource handlers live in the subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"newsreader/internal/handler/http/respond"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// poolDegradedPercent is the pool utilisation at which the database check degrades.
const poolDegradedPercent = 80.0

type HealthResponse struct {
	Status    string                 `json:"status"` // healthy, degraded or unhealthy
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the database plus optional dependencies.
//
// The database is required: when it is down the service is unhealthy (503).
// Optional dependencies (search cache, news API circuit) only degrade the
// service; headlines are still served from the local cache and search goes
// upstream directly.
type HealthHandler struct {
	DB       *sql.DB
	Optional map[string]Pinger
	Version  string
	now      func() time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"database": h.checkDatabase(ctx)}
	for _, name := range sortedKeys(h.Optional) {
		checks[name] = checkOptional(ctx, h.Optional[name])
	}

	overall := statusHealthy
	for _, c := range checks {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	now := time.Now
	if h.now != nil {
		now = h.now
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    overall,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// checkDatabase pings the database and reports pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: statusDegraded, Message: "DB_MAX_OPEN_CONNS is unlimited", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= poolDegradedPercent {
		return CheckStatus{Status: statusDegraded, Message: "connection pool nearly exhausted", Details: details}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func checkOptional(ctx context.Context, p Pinger) CheckStatus {
	if err := p.Ping(ctx); err != nil {
		return CheckStatus{Status: statusDegraded, Message: respond.SanitizeError(err)}
	}
	return CheckStatus{Status: statusHealthy}
}

func sortedKeys(m map[string]Pinger) []string {
	keys := make([]string, 0, len(m))
	for k, p := range m {
		if p != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ReadyHandler answers readiness probes: ready once the database responds.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	writeText(w, "ready")
}

// LiveHandler answers liveness probes; it never touches dependencies.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Warn("health: failed to write response", slog.Any("error", err))
	}
}
