// Package metrics provides the domain Prometheus metrics of the news reader.
//
// HTTP server metrics live with the HTTP handlers; this package covers:
//   - upstream news API calls (count by endpoint and outcome, latency)
//   - headline feed loads (refresh/append/prepend outcomes, stale serving)
//   - search page cache hits and misses
//   - article content extraction
//   - favorites and source catalog sizes
//   - domain events published
//
// All metrics are registered with the Prometheus default registry and exposed
// via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	resp, err := call()
//	metrics.RecordNewsAPIRequest("top-headlines", metrics.OutcomeOf(err), time.Since(start))
package metrics
