// Package tracing wires OpenTelemetry into the news reader.
//
// Setup installs an SDK tracer provider when OTEL_TRACING_ENABLED is true and
// a W3C trace-context propagator in every case. Middleware opens a server span
// per HTTP request and returns the trace ID in the X-Trace-Id header.
// Outbound calls (news API, article pages, Kafka) open client spans through
// StartSpan.
//
//	shutdown, err := tracing.Setup(ctx, tracing.ProviderConfig{Enabled: true, ServiceVersion: "1.2.0"})
//	defer shutdown(context.Background())
package tracing
