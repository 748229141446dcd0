package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream news API metrics
var (
	// NewsAPIRequestsTotal counts upstream calls by endpoint and outcome
	NewsAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsapi_requests_total",
			Help: "Total number of news API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	NewsAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsapi_request_duration_seconds",
			Help:    "News API request duration in seconds, retries included",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)

// Feed metrics
var (
	// FeedLoadsTotal counts mediator loads by load type (refresh, append, prepend) and outcome
	FeedLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_loads_total",
			Help: "Total number of headline feed loads",
		},
		[]string{"load_type", "outcome"},
	)

	FeedArticlesStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_articles_stored_total",
			Help: "Total number of headline articles written to the cache",
		},
	)

	// FeedStaleServedTotal counts feed pages served from cache after an upstream failure
	FeedStaleServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_stale_served_total",
			Help: "Total number of feed pages served from a stale cache",
		},
	)
)

// Search cache metrics
var (
	SearchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_requests_total",
			Help: "Search page cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Content extraction metrics
var (
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Article content extraction attempts by result",
		},
		[]string{"result"},
	)

	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Article content extraction duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_size_chars",
			Help:    "Extracted article text size in characters",
			Buckets: prometheus.ExponentialBuckets(500, 2, 8),
		},
	)
)

// Catalog and event metrics
var (
	FavoritesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "favorites_total",
			Help: "Number of favorite articles",
		},
	)

	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Number of sources in the cached catalog",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events handed to the publisher by type and result",
		},
		[]string{"type", "result"},
	)
)
