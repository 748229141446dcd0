package metrics

import (
	"context"
	"errors"
	"time"

	"newsreader/internal/domain/entity"
)

// Outcome labels shared by the news API and feed metrics.
const (
	OutcomeOK          = "ok"
	OutcomeNetwork     = "network"
	OutcomeClientError = "http_4xx"
	OutcomeServerError = "http_5xx"
	OutcomeNoData      = "no_data"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// OutcomeOf classifies err into one of the Outcome labels.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var httpErr *entity.HTTPStatusError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, entity.ErrNetwork):
		return OutcomeNetwork
	case errors.As(err, &httpErr):
		if httpErr.IsServerError() {
			return OutcomeServerError
		}
		return OutcomeClientError
	case errors.Is(err, entity.ErrNoData):
		return OutcomeNoData
	default:
		return OutcomeError
	}
}

// RecordNewsAPIRequest records one upstream call.
func RecordNewsAPIRequest(endpoint, outcome string, duration time.Duration) {
	NewsAPIRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	NewsAPIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordFeedLoad records a mediator load and the number of articles it stored.
func RecordFeedLoad(loadType string, err error, stored int) {
	FeedLoadsTotal.WithLabelValues(loadType, OutcomeOf(err)).Inc()
	if stored > 0 {
		FeedArticlesStoredTotal.Add(float64(stored))
	}
}

// RecordStaleFeedServed records a page served from cache after an upstream failure.
func RecordStaleFeedServed() {
	FeedStaleServedTotal.Inc()
}

// RecordSearchCache records a cache lookup: "hit", "miss" or "error".
func RecordSearchCache(result string) {
	SearchCacheTotal.WithLabelValues(result).Inc()
}

// RecordContentFetchSuccess records a successful extraction.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), len(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed extraction.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchCached records a detail view served from the cached headline after a failed fetch.
func RecordContentFetchCached() {
	ContentFetchAttemptsTotal.WithLabelValues("cached").Inc()
}

func UpdateFavoritesTotal(count int) {
	FavoritesTotal.Set(float64(count))
}

func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordEventPublished records a publish attempt of eventType.
func RecordEventPublished(eventType string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}
