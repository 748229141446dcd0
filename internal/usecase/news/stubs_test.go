package news_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/internal/repository"
	"newsreader/internal/usecase/event"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

// memNewsRepo keeps the feed as an ordered slice, like feed_seq ordering.
type memNewsRepo struct {
	feed      []*entity.NewsArticle
	favorites map[string]bool
	key       *entity.FeedKey
	stored    []repository.FeedPage
	err       error // 強制エラー注入用
}

func newMemNewsRepo() *memNewsRepo {
	return &memNewsRepo{favorites: map[string]bool{}}
}

func (r *memNewsRepo) ListFeed(_ context.Context, offset, limit int) ([]*entity.NewsArticle, error) {
	if r.err != nil {
		return nil, r.err
	}
	if offset >= len(r.feed) {
		return []*entity.NewsArticle{}, nil
	}
	end := min(offset+limit, len(r.feed))
	return r.feed[offset:end], nil
}

func (r *memNewsRepo) CountFeed(context.Context) (int64, error) {
	return int64(len(r.feed)), r.err
}

func (r *memNewsRepo) GetByURL(_ context.Context, url string) (*entity.NewsArticle, error) {
	for _, a := range r.feed {
		if a.URL == url {
			return a, nil
		}
	}
	return nil, r.err
}

func (r *memNewsRepo) StoreFeedPage(_ context.Context, page repository.FeedPage) error {
	if r.err != nil {
		return r.err
	}
	if page.Expect != nil && (r.key == nil || !r.key.Same(*page.Expect)) {
		return repository.ErrFeedKeyConflict
	}
	r.stored = append(r.stored, page)
	if page.Replace {
		r.feed = nil
	}
	for _, a := range page.Articles {
		found := false
		for _, existing := range r.feed {
			if existing.URL == a.URL {
				found = true
			}
		}
		if !found {
			cp := *a
			cp.IsFavorite = r.favorites[a.URL]
			r.feed = append(r.feed, &cp)
		}
	}
	k := page.Key
	r.key = &k
	return nil
}

func (r *memNewsRepo) FeedKey(context.Context) (*entity.FeedKey, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.key == nil {
		return nil, nil
	}
	k := *r.key
	return &k, nil
}

func (r *memNewsRepo) ClearCache(context.Context) (int64, error) {
	n := int64(0)
	for _, a := range r.feed {
		if !a.IsFavorite {
			n++
		}
	}
	r.feed = nil
	r.key = nil
	return n, r.err
}

func (r *memNewsRepo) DeleteAll(ctx context.Context) (int64, error) {
	return r.ClearCache(ctx)
}

// memFavorites only answers lookups; the favorite use case has its own tests.
type memFavorites struct {
	urls map[string]bool
	err  error
}

func (f *memFavorites) ListFavorites(context.Context) ([]*entity.NewsArticle, error) { return nil, nil }
func (f *memFavorites) AddFavorite(context.Context, *entity.NewsArticle, time.Time) error {
	return nil
}
func (f *memFavorites) RemoveFavorite(context.Context, string) (bool, error) { return false, nil }
func (f *memFavorites) IsFavorite(_ context.Context, url string) (bool, error) {
	return f.urls[url], f.err
}
func (f *memFavorites) FavoriteURLs(_ context.Context, urls []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]bool{}
	for _, u := range urls {
		if f.urls[u] {
			out[u] = true
		}
	}
	return out, nil
}
func (f *memFavorites) RemoveAllFavorites(context.Context) (int64, error) { return 0, nil }

// stubRemote serves fixed pages and records every call.
type stubRemote struct {
	headlines  map[int][]*entity.NewsArticle
	everything map[int][]*entity.NewsArticle
	total      int
	err        error

	// onHeadlines runs before a headline page is answered, to interleave
	// other feed writers with an in-flight request.
	onHeadlines func(q entity.HeadlinesQuery)

	headlineCalls   []entity.HeadlinesQuery
	everythingCalls []entity.EverythingQuery
}

func (s *stubRemote) TopHeadlines(_ context.Context, q entity.HeadlinesQuery) (*entity.NewsResponse, error) {
	s.headlineCalls = append(s.headlineCalls, q)
	if s.onHeadlines != nil {
		s.onHeadlines(q)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entity.NewsResponse{Status: "ok", TotalResults: s.total, Articles: copyArticles(s.headlines[q.Page])}, nil
}

func (s *stubRemote) Everything(_ context.Context, q entity.EverythingQuery) (*entity.NewsResponse, error) {
	s.everythingCalls = append(s.everythingCalls, q)
	if s.err != nil {
		return nil, s.err
	}
	return &entity.NewsResponse{Status: "ok", TotalResults: s.total, Articles: copyArticles(s.everything[q.Page])}, nil
}

func (s *stubRemote) Sources(context.Context, entity.SourceFilter) ([]*entity.NewsSource, error) {
	return nil, errors.New("not used")
}

type memSearchCache struct {
	mu     sync.Mutex
	pages  map[string][]*entity.NewsArticle
	err    error
	purged int
}

func newMemSearchCache() *memSearchCache {
	return &memSearchCache{pages: map[string][]*entity.NewsArticle{}}
}

func (c *memSearchCache) Get(_ context.Context, key string) ([]*entity.NewsArticle, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	a, ok := c.pages[key]
	return copyArticles(a), ok, nil
}

func (c *memSearchCache) Set(_ context.Context, key string, articles []*entity.NewsArticle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.pages[key] = copyArticles(articles)
	return nil
}

func (c *memSearchCache) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[string][]*entity.NewsArticle{}
	c.purged++
	return nil
}

type recordingPublisher struct {
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	p.events = append(p.events, e)
	return nil
}

/*────────────────────  ヘルパー  ────────────────────*/

func article(url string) *entity.NewsArticle {
	return &entity.NewsArticle{URL: url, Title: "title " + url, Source: entity.Source{Name: "Example"}}
}

func articles(urls ...string) []*entity.NewsArticle {
	out := make([]*entity.NewsArticle, 0, len(urls))
	for _, u := range urls {
		out = append(out, article(u))
	}
	return out
}

func copyArticles(in []*entity.NewsArticle) []*entity.NewsArticle {
	if in == nil {
		return nil
	}
	out := make([]*entity.NewsArticle, 0, len(in))
	for _, a := range in {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

func urlsOf(in []*entity.NewsArticle) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, a.URL)
	}
	return out
}
