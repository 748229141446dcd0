package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"newsreader/internal/domain/entity"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: OutcomeOK},
		{name: "network", err: fmt.Errorf("%w: dial tcp", entity.ErrNetwork), want: OutcomeNetwork},
		{name: "4xx", err: &entity.HTTPStatusError{StatusCode: 401}, want: OutcomeClientError},
		{name: "5xx", err: &entity.HTTPStatusError{StatusCode: 502}, want: OutcomeServerError},
		{name: "no data", err: entity.ErrNoData, want: OutcomeNoData},
		{name: "canceled", err: context.Canceled, want: OutcomeCanceled},
		{name: "other", err: errors.New("x"), want: OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeOf(tt.err))
		})
	}
}

func TestRecordNewsAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(NewsAPIRequestsTotal.WithLabelValues("everything", OutcomeOK))
	RecordNewsAPIRequest("everything", OutcomeOK, 120*time.Millisecond)
	after := testutil.ToFloat64(NewsAPIRequestsTotal.WithLabelValues("everything", OutcomeOK))

	assert.Equal(t, before+1, after)
}

func TestRecordFeedLoad(t *testing.T) {
	storedBefore := testutil.ToFloat64(FeedArticlesStoredTotal)
	loadsBefore := testutil.ToFloat64(FeedLoadsTotal.WithLabelValues("refresh", OutcomeOK))

	RecordFeedLoad("refresh", nil, 15)
	RecordFeedLoad("refresh", nil, 0)

	assert.Equal(t, storedBefore+15, testutil.ToFloat64(FeedArticlesStoredTotal))
	assert.Equal(t, loadsBefore+2, testutil.ToFloat64(FeedLoadsTotal.WithLabelValues("refresh", OutcomeOK)))
}

func TestGaugesAndCounters(t *testing.T) {
	UpdateFavoritesTotal(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(FavoritesTotal))

	UpdateSourcesTotal(128)
	assert.Equal(t, 128.0, testutil.ToFloat64(SourcesTotal))

	before := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("favorite.added", "failure"))
	RecordEventPublished("favorite.added", errors.New("broker down"))
	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("favorite.added", "failure")))

	hitsBefore := testutil.ToFloat64(SearchCacheTotal.WithLabelValues("hit"))
	RecordSearchCache("hit")
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(SearchCacheTotal.WithLabelValues("hit")))
}
