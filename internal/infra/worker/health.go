package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthServer serves the worker probes and its Prometheus metrics.
//
//	GET /health        liveness, always 200
//	GET /health/ready  200 once SetReady(true) was called, else 503
//	GET /metrics       Prometheus exposition
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	ready    atomic.Bool

	mu      sync.RWMutex
	lastRun *RunResult
	lastAt  time.Time
}

type healthResponse struct {
	Status    string     `json:"status"`
	LastRun   string     `json:"last_run,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// NewHealthServer builds a server on addr exposing gatherer.
// A nil gatherer uses prometheus.DefaultGatherer.
func NewHealthServer(addr string, logger *slog.Logger, gatherer prometheus.Gatherer) *HealthServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HealthServer{addr: addr, logger: logger, gatherer: gatherer}
}

// Handler returns the probe mux.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns nil after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		h.logger.Info("health server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
}

// RecordRun exposes the outcome of the latest job run on /health/ready.
func (h *HealthServer) RecordRun(res RunResult, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = &res
	h.lastAt = at.UTC()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	h.mu.RLock()
	if h.lastRun != nil {
		at := h.lastAt
		resp.LastRun = h.lastRun.Status
		resp.LastRunAt = &at
	}
	h.mu.RUnlock()

	if !h.ready.Load() {
		resp.Status = "not ready"
		h.write(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.write(w, http.StatusOK, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
