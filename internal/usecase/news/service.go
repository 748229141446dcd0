package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/repository"
	"newsreader/internal/usecase/event"
)

// DefaultFeedTTL is how long a refreshed feed is served before page 1 triggers a new refresh.
const DefaultFeedTTL = 15 * time.Minute

// maxAppendsPerRequest bounds the upstream calls one request can trigger.
const maxAppendsPerRequest = 10

// Service provides the news reading use cases.
// Cache and Events are optional.
type Service struct {
	Repo      repository.NewsRepository
	Favorites repository.FavoriteRepository
	Remote    repository.NewsRemote
	Cache     SearchCache
	Events    event.Publisher
	Paging    pagination.Config
	FeedTTL   time.Duration
	Now       func() time.Time
}

// HeadlinesRequest selects a page of the cached headline feed.
type HeadlinesRequest struct {
	Country      string
	Page         int
	PageSize     int
	ForceRefresh bool
}

// HeadlinesResult is a feed page. Stale is set when the upstream failed and
// the page was served from an older cache.
type HeadlinesResult struct {
	pagination.Page[*entity.NewsArticle]
	Country string
	Stale   bool
}

// TopHeadlines serves a feed page from the cache, refreshing or extending the cache first when needed.
func (s *Service) TopHeadlines(ctx context.Context, req HeadlinesRequest) (*HeadlinesResult, error) {
	country, err := entity.NormalizeCountry(req.Country)
	if err != nil {
		return nil, err
	}
	params, err := s.params(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	key, err := s.Repo.FeedKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("top headlines: load feed key: %w", err)
	}
	sameCountry := key != nil && key.Country == country

	mediator := s.mediator()
	var (
		loadErr    error
		endReached bool
	)
	if req.ForceRefresh || !sameCountry || (params.Page == 1 && key.IsStale(s.now(), s.feedTTL())) {
		res, err := mediator.Load(ctx, pagination.Refresh, country)
		if err != nil {
			loadErr = err
		}
		endReached = res.EndOfPagination
	} else {
		endReached = key.EndReached
	}

	if loadErr == nil {
		endReached, loadErr = s.fill(ctx, mediator, country, params, endReached)
	}

	if loadErr != nil && !sameCountry {
		return nil, fmt.Errorf("top headlines: %w", loadErr)
	}

	offset := pagination.CalculateOffset(params.Page, params.Limit)
	rows, err := s.Repo.ListFeed(ctx, offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("top headlines: list feed: %w", err)
	}
	count, err := s.Repo.CountFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("top headlines: count feed: %w", err)
	}

	result := &HeadlinesResult{Country: country}
	if loadErr != nil {
		if count == 0 {
			return nil, fmt.Errorf("top headlines: %w: %w", ErrFeedUnavailable, loadErr)
		}
		slog.Warn("serving stale headline feed",
			slog.String("country", country),
			slog.Int("page", params.Page),
			slog.Any("error", loadErr))
		metrics.RecordStaleFeedServed()
		result.Stale = true
	}

	// A deep jump can exhaust the append budget before reaching offset; the
	// page is then empty but the feed goes on, so NextKey stays set.
	hasNext := int64(offset+len(rows)) < count || !endReached
	result.Page = pagination.NewPage(rows, params.Page, hasNext)
	return result, nil
}

// fill appends upstream pages until the cache can serve params in full or the feed ends.
func (s *Service) fill(ctx context.Context, m *FeedMediator, country string, params pagination.Params, endReached bool) (bool, error) {
	need := pagination.RowsNeeded(params.Page, params.Limit)
	for i := 0; i < maxAppendsPerRequest && !endReached; i++ {
		count, err := s.Repo.CountFeed(ctx)
		if err != nil {
			return endReached, fmt.Errorf("count feed: %w", err)
		}
		if count >= need {
			return endReached, nil
		}
		res, err := m.Load(ctx, pagination.Append, country)
		if err != nil {
			return endReached, err
		}
		endReached = res.EndOfPagination
	}
	return endReached, nil
}

// Refresh forces a REFRESH of country's feed.
func (s *Service) Refresh(ctx context.Context, country string) (MediatorResult, error) {
	country, err := entity.NormalizeCountry(country)
	if err != nil {
		return MediatorResult{}, err
	}

	res, err := s.mediator().Load(ctx, pagination.Refresh, country)
	if err != nil {
		return MediatorResult{}, fmt.Errorf("refresh %s: %w", country, err)
	}

	event.Emit(ctx, s.Events, event.New(event.FeedRefreshed, country, map[string]any{
		"country":     country,
		"articles":    res.Stored,
		"end_reached": res.EndOfPagination,
	}))
	return res, nil
}

// CachedCountry returns the country of the cached feed, or fallback before the first refresh.
func (s *Service) CachedCountry(ctx context.Context, fallback string) (string, error) {
	key, err := s.Repo.FeedKey(ctx)
	if err != nil {
		return "", fmt.Errorf("feed key: %w", err)
	}
	if key == nil || key.Country == "" {
		return entity.NormalizeCountry(fallback)
	}
	return key.Country, nil
}

// ClearCache drops cached headlines and search pages. Favorites are kept.
func (s *Service) ClearCache(ctx context.Context) (int64, error) {
	n, err := s.Repo.ClearCache(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Purge(ctx); err != nil {
			slog.Warn("search cache purge failed", slog.Any("error", err))
		}
	}

	event.Emit(ctx, s.Events, event.New(event.CacheCleared, "", map[string]any{"deleted": n}))
	return n, nil
}

func (s *Service) params(page, size int) (pagination.Params, error) {
	return pagination.Params{Page: page, Limit: size}.Resolve(s.paging())
}

func (s *Service) mediator() *FeedMediator {
	return &FeedMediator{
		Repo:     s.Repo,
		Remote:   s.Remote,
		PageSize: s.paging().DefaultLimit,
		Now:      s.Now,
	}
}

func (s *Service) paging() pagination.Config {
	if s.Paging.DefaultLimit == 0 {
		return pagination.DefaultConfig()
	}
	return s.Paging
}

func (s *Service) feedTTL() time.Duration {
	if s.FeedTTL <= 0 {
		return DefaultFeedTTL
	}
	return s.FeedTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// isEndOfData reports upstream answers that simply mean "no more results".
func isEndOfData(err error) bool {
	return errors.Is(err, entity.ErrNoData) || entity.IsEndOfResults(err)
}
