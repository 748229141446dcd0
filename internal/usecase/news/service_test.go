package news_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/usecase/event"
	"newsreader/internal/usecase/news"
)

func newService(repo *memNewsRepo, remote *stubRemote) *news.Service {
	return &news.Service{
		Repo:      repo,
		Favorites: &memFavorites{urls: map[string]bool{}},
		Remote:    remote,
		Paging:    pagination.Config{DefaultPage: 1, DefaultLimit: 2, MaxLimit: 100},
		FeedTTL:   15 * time.Minute,
		Now:       func() time.Time { return fixedNow },
	}
}

/* ──────────────────────────────── 1. TopHeadlines ──────────────────────────────── */

func TestTopHeadlines_FirstLoadRefreshes(t *testing.T) {
	repo := newMemNewsRepo()
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{
		1: articles("https://a", "https://b"),
	}}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{})
	require.NoError(t, err)

	assert.Equal(t, "us", res.Country, "country defaults to us")
	assert.Equal(t, []string{"https://a", "https://b"}, urlsOf(res.Data))
	assert.Nil(t, res.PrevKey)
	require.NotNil(t, res.NextKey)
	assert.Equal(t, 2, *res.NextKey)
	assert.False(t, res.Stale)
	assert.Len(t, remote.headlineCalls, 1)
}

func TestTopHeadlines_FreshCacheMakesNoCall(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow.Add(-time.Minute)}
	remote := &stubRemote{}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Country: "US", Page: 1})
	require.NoError(t, err)

	assert.Empty(t, remote.headlineCalls)
	assert.Len(t, res.Data, 2)
}

func TestTopHeadlines_StaleCacheRefreshesOnFirstPage(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://old")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow.Add(-time.Hour)}
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{1: articles("https://new1", "https://new2")}}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://new1", "https://new2"}, urlsOf(res.Data))
	assert.True(t, repo.stored[0].Replace)
}

func TestTopHeadlines_ForceRefresh(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow}
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{1: articles("https://c", "https://d")}}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://c", "https://d"}, urlsOf(res.Data))
}

func TestTopHeadlines_LaterPageAppends(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow.Add(-time.Minute)}
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{2: articles("https://c", "https://d")}}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://c", "https://d"}, urlsOf(res.Data))
	require.NotNil(t, res.PrevKey)
	assert.Equal(t, 1, *res.PrevKey)
	require.Len(t, remote.headlineCalls, 1)
	assert.Equal(t, 2, remote.headlineCalls[0].Page)
}

func TestTopHeadlines_RefreshDuringAppendLeavesNoGap(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://o1a", "https://o1b", "https://o2a", "https://o2b", "https://o3a", "https://o3b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 3, RefreshedAt: fixedNow.Add(-time.Minute)}
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{
		1: articles("https://n1a", "https://n1b"),
		2: articles("https://n2a", "https://n2b"),
		3: articles("https://n3a", "https://n3b"),
		4: articles("https://n4a", "https://n4b"),
	}}
	svc := newService(repo, remote)

	// ワーカーの更新がページ 4 の取得中に割り込む
	refreshed := false
	remote.onHeadlines = func(q entity.HeadlinesQuery) {
		if q.Page == 4 && !refreshed {
			refreshed = true
			_, err := svc.Refresh(context.Background(), "us")
			require.NoError(t, err)
		}
	}

	res, err := svc.TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://n4a", "https://n4b"}, urlsOf(res.Data))
	assert.Equal(t, []string{
		"https://n1a", "https://n1b", "https://n2a", "https://n2b",
		"https://n3a", "https://n3b", "https://n4a", "https://n4b",
	}, urlsOf(repo.feed))
	assert.Equal(t, 4, repo.key.LastPage)
}

func TestTopHeadlines_DeepJumpBeyondAppendBudget(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://p1a", "https://p1b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow.Add(-time.Minute)}
	pages := map[int][]*entity.NewsArticle{}
	for p := 2; p <= 30; p++ {
		pages[p] = articles(fmt.Sprintf("https://p%da", p), fmt.Sprintf("https://p%db", p))
	}
	remote := &stubRemote{headlines: pages}
	svc := newService(repo, remote)

	res, err := svc.TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 20})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	require.NotNil(t, res.NextKey, "the feed has not ended, so the page is not terminal")
	assert.Equal(t, 21, *res.NextKey)
	assert.Equal(t, 11, repo.key.LastPage)

	// 次の要求で残りが取得される
	res, err = svc.TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://p20a", "https://p20b"}, urlsOf(res.Data))
	require.NotNil(t, res.NextKey)
}

func TestTopHeadlines_LastPage(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b", "https://c")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 2, EndReached: true, RefreshedAt: fixedNow}
	remote := &stubRemote{}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://c"}, urlsOf(res.Data))
	assert.Nil(t, res.NextKey)
	assert.Empty(t, remote.headlineCalls)
}

func TestTopHeadlines_CountryChangeRefreshes(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://gb1")
	repo.key = &entity.FeedKey{Country: "gb", LastPage: 1, RefreshedAt: fixedNow}
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{1: articles("https://jp1")}}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Country: "jp"})
	require.NoError(t, err)

	assert.Equal(t, "jp", remote.headlineCalls[0].Country)
	assert.Equal(t, []string{"https://jp1"}, urlsOf(res.Data))
}

func TestTopHeadlines_ServesStaleCacheOnFailure(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1, RefreshedAt: fixedNow.Add(-2 * time.Hour)}
	remote := &stubRemote{err: fmt.Errorf("%w: timeout", entity.ErrNetwork)}

	res, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{})
	require.NoError(t, err)

	assert.True(t, res.Stale)
	assert.Len(t, res.Data, 2)
}

func TestTopHeadlines_FailureWithoutCache(t *testing.T) {
	repo := newMemNewsRepo()
	remote := &stubRemote{err: &entity.HTTPStatusError{StatusCode: 500}}

	_, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{})

	var httpErr *entity.HTTPStatusError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, entity.MsgServer, entity.UserMessage(err))
}

func TestTopHeadlines_FailureForOtherCountryIsNotServedStale(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://gb1")
	repo.key = &entity.FeedKey{Country: "gb", LastPage: 1, RefreshedAt: fixedNow}
	remote := &stubRemote{err: fmt.Errorf("%w: refused", entity.ErrNetwork)}

	_, err := newService(repo, remote).TopHeadlines(context.Background(), news.HeadlinesRequest{Country: "us"})
	assert.ErrorIs(t, err, entity.ErrNetwork)
}

func TestTopHeadlines_Validation(t *testing.T) {
	svc := newService(newMemNewsRepo(), &stubRemote{})

	tests := []struct {
		name  string
		req   news.HeadlinesRequest
		field string
	}{
		{name: "unsupported country", req: news.HeadlinesRequest{Country: "xx"}, field: "country"},
		{name: "negative page", req: news.HeadlinesRequest{Page: -1}, field: "page"},
		{name: "limit too large", req: news.HeadlinesRequest{PageSize: 101}, field: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TopHeadlines(context.Background(), tt.req)
			var vErr *entity.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestTopHeadlines_RepositoryError(t *testing.T) {
	repo := newMemNewsRepo()
	repo.err = errors.New("db down")

	_, err := newService(repo, &stubRemote{}).TopHeadlines(context.Background(), news.HeadlinesRequest{})
	assert.ErrorContains(t, err, "db down")
}

/* ──────────────────────────────── 2. Refresh / ClearCache ──────────────────────────────── */

func TestRefresh_PublishesEvent(t *testing.T) {
	repo := newMemNewsRepo()
	remote := &stubRemote{headlines: map[int][]*entity.NewsArticle{1: articles("https://a")}}
	pub := &recordingPublisher{}
	svc := newService(repo, remote)
	svc.Events = pub

	res, err := svc.Refresh(context.Background(), "GB")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stored)
	assert.Equal(t, "gb", remote.headlineCalls[0].Country)
	require.Len(t, pub.events, 1)
	assert.Equal(t, event.FeedRefreshed, pub.events[0].Type)
	assert.Equal(t, "gb", pub.events[0].Key)
}

func TestRefresh_Error(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(newMemNewsRepo(), &stubRemote{err: entity.ErrNoData})
	svc.Events = pub

	_, err := svc.Refresh(context.Background(), "us")

	assert.ErrorIs(t, err, entity.ErrNoData)
	assert.Empty(t, pub.events)
}

func TestClearCache(t *testing.T) {
	repo := newMemNewsRepo()
	repo.feed = articles("https://a", "https://b")
	repo.key = &entity.FeedKey{Country: "us", LastPage: 1}
	cache := newMemSearchCache()
	pub := &recordingPublisher{}
	svc := newService(repo, &stubRemote{})
	svc.Cache = cache
	svc.Events = pub

	n, err := svc.ClearCache(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	assert.Nil(t, repo.key)
	assert.Equal(t, 1, cache.purged)
	require.Len(t, pub.events, 1)
	assert.Equal(t, event.CacheCleared, pub.events[0].Type)
}

func TestCachedCountry(t *testing.T) {
	repo := newMemNewsRepo()
	svc := newService(repo, &stubRemote{})
	ctx := context.Background()

	got, err := svc.CachedCountry(ctx, "GB")
	require.NoError(t, err)
	assert.Equal(t, "gb", got)

	repo.key = &entity.FeedKey{Country: "jp", LastPage: 3}
	got, err = svc.CachedCountry(ctx, "gb")
	require.NoError(t, err)
	assert.Equal(t, "jp", got)

	repo.key = nil
	_, err = svc.CachedCountry(ctx, "zz")
	var vErr *entity.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
