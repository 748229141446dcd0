// Package observability groups the logging, metrics and tracing packages
// shared by the API server, the refresh worker and newsctl.
//
// Subpackages:
//   - logging: slog setup from LOG_LEVEL and context propagation
//   - metrics: Prometheus metrics for upstream calls, the feed and favorites
//   - tracing: OpenTelemetry tracer, provider setup and HTTP middleware
package observability
