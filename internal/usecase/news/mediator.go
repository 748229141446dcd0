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
)

// maxAppendConflicts bounds how often an append re-reads the key after losing
// a race with another feed writer.
const maxAppendConflicts = 3

// MediatorResult reports how a load ended.
type MediatorResult struct {
	EndOfPagination bool
	// Stored is the number of distinct articles written by this load.
	Stored int
}

// FeedMediator pulls headline pages from the remote API into the local cache
// and keeps the paging bookmark (entity.FeedKey) in step with it.
type FeedMediator struct {
	Repo   repository.NewsRepository
	Remote repository.NewsRemote
	// PageSize is the upstream page size. It must stay constant for a given
	// cache, otherwise LastPage no longer lines up with stored rows.
	PageSize int
	Now      func() time.Time
}

// Load runs one mediator step for country.
func (m *FeedMediator) Load(ctx context.Context, loadType pagination.LoadType, country string) (res MediatorResult, err error) {
	defer func() {
		metrics.RecordFeedLoad(loadType.String(), err, res.Stored)
	}()

	switch loadType {
	case pagination.Prepend:
		return MediatorResult{EndOfPagination: true}, nil

	case pagination.Append:
		for attempt := 1; ; attempt++ {
			res, err = m.appendNext(ctx, country)
			if !errors.Is(err, repository.ErrFeedKeyConflict) || attempt >= maxAppendConflicts {
				return res, err
			}
			slog.Info("feed changed during append, reloading key",
				slog.String("country", country),
				slog.Int("attempt", attempt))
		}

	case pagination.Refresh:
		return m.fetch(ctx, country, 1, true, m.now(), nil)

	default:
		return MediatorResult{}, fmt.Errorf("unknown load type %d", loadType)
	}
}

// appendNext extends the feed by one upstream page. The write is conditional
// on the key read here, so a refresh that lands while the page is in flight
// turns into ErrFeedKeyConflict instead of a gap in the feed.
func (m *FeedMediator) appendNext(ctx context.Context, country string) (MediatorResult, error) {
	key, err := m.Repo.FeedKey(ctx)
	if err != nil {
		return MediatorResult{}, fmt.Errorf("append: load feed key: %w", err)
	}
	if key == nil || key.Country != country {
		// 別の国のフィードが残っている場合は作り直す
		return m.fetch(ctx, country, 1, true, m.now(), nil)
	}
	if key.EndReached {
		return MediatorResult{EndOfPagination: true}, nil
	}
	return m.fetch(ctx, country, key.LastPage+1, false, key.RefreshedAt, key)
}

// fetch requests page and stores it. refreshedAt is carried over on append so
// the feed ages from its last full refresh. A non-nil expect guards the write.
func (m *FeedMediator) fetch(ctx context.Context, country string, page int, replace bool, refreshedAt time.Time, expect *entity.FeedKey) (MediatorResult, error) {
	resp, err := m.Remote.TopHeadlines(ctx, entity.HeadlinesQuery{
		Country:  country,
		Page:     page,
		PageSize: m.PageSize,
	})
	if err != nil {
		if !replace && entity.IsEndOfResults(err) {
			return m.markEnd(ctx, country, page-1, refreshedAt, expect)
		}
		return MediatorResult{}, fmt.Errorf("fetch page %d: %w", page, err)
	}

	articles := entity.DedupeByURL(resp.Articles)
	end := len(articles) == 0 ||
		(resp.TotalResults > 0 && page*m.PageSize >= resp.TotalResults)

	if err := m.Repo.StoreFeedPage(ctx, repository.FeedPage{
		Articles: articles,
		Replace:  replace,
		Expect:   expect,
		Key: entity.FeedKey{
			Country:     country,
			LastPage:    page,
			EndReached:  end,
			RefreshedAt: refreshedAt,
		},
	}); err != nil {
		return MediatorResult{}, fmt.Errorf("store page %d: %w", page, err)
	}

	slog.Debug("feed page stored",
		slog.String("country", country),
		slog.Int("page", page),
		slog.Int("articles", len(articles)),
		slog.Bool("replace", replace),
		slog.Bool("end_reached", end))

	return MediatorResult{EndOfPagination: end, Stored: len(articles)}, nil
}

func (m *FeedMediator) markEnd(ctx context.Context, country string, lastPage int, refreshedAt time.Time, expect *entity.FeedKey) (MediatorResult, error) {
	if err := m.Repo.StoreFeedPage(ctx, repository.FeedPage{
		Expect: expect,
		Key: entity.FeedKey{
			Country:     country,
			LastPage:    lastPage,
			EndReached:  true,
			RefreshedAt: refreshedAt,
		},
	}); err != nil {
		return MediatorResult{}, fmt.Errorf("mark end: %w", err)
	}
	return MediatorResult{EndOfPagination: true}, nil
}

func (m *FeedMediator) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
