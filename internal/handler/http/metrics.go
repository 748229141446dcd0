package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsreader/internal/handler/http/pathutil"
	"newsreader/internal/handler/http/responsewriter"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Upstream calls put most requests in the 100ms-2.5s range; cache hits are a few ms.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 7),
		},
		[]string{"path"},
	)

	// 上流が落ちていてキャッシュから返した件数
	staleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_stale_responses_total",
			Help: "Responses served from an expired local cache because the news API failed",
		},
		[]string{"path"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)

// MetricsMiddleware records request count, latency and response size per route
// template, and counts stale responses (those carrying a 110 Warning header).
// Paths are normalized so /sources/{id} does not create a series per source.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r)

		path := pathutil.NormalizePath(r.URL.Path)
		status := strconv.Itoa(rw.StatusCode())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(rw.Elapsed().Seconds())
		httpResponseSize.WithLabelValues(path).Observe(float64(rw.BytesWritten()))
		if strings.HasPrefix(rw.Header().Get("Warning"), "110") {
			staleResponsesTotal.WithLabelValues(path).Inc()
		}
	})
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
