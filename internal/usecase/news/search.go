package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
)

// SearchCache stores upstream search pages for a short time.
// Implementations must treat a missing key as (nil, false, nil).
type SearchCache interface {
	Get(ctx context.Context, key string) ([]*entity.NewsArticle, bool, error)
	Set(ctx context.Context, key string, articles []*entity.NewsArticle) error
	Purge(ctx context.Context) error
}

// SearchRequest is a full-text search, optionally restricted to source IDs.
type SearchRequest struct {
	Query    string
	Sources  []string
	Page     int
	PageSize int
}

// Search returns one page of search results. Queries shorter than
// MinQueryLength return an empty page without calling upstream.
func (s *Service) Search(ctx context.Context, req SearchRequest) (pagination.Page[*entity.NewsArticle], error) {
	params, err := s.params(req.Page, req.PageSize)
	if err != nil {
		return pagination.Page[*entity.NewsArticle]{}, err
	}

	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return pagination.Empty[*entity.NewsArticle](params.Page), nil
	}

	return s.everything(ctx, entity.EverythingQuery{
		Query:    query,
		Sources:  cleanSources(req.Sources),
		Page:     params.Page,
		PageSize: params.Limit,
	})
}

// BySource pages through the articles of one catalog source.
func (s *Service) BySource(ctx context.Context, sourceID string, page, pageSize int) (pagination.Page[*entity.NewsArticle], error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return pagination.Page[*entity.NewsArticle]{}, &entity.ValidationError{Field: "source", Message: "source id is required"}
	}
	params, err := s.params(page, pageSize)
	if err != nil {
		return pagination.Page[*entity.NewsArticle]{}, err
	}

	return s.everything(ctx, entity.EverythingQuery{
		Sources:  []string{sourceID},
		Page:     params.Page,
		PageSize: params.Limit,
	})
}

func (s *Service) everything(ctx context.Context, q entity.EverythingQuery) (pagination.Page[*entity.NewsArticle], error) {
	key := searchCacheKey(q)

	articles, hit := s.cached(ctx, key)
	if !hit {
		resp, err := s.Remote.Everything(ctx, q)
		switch {
		case err == nil:
			articles = entity.DedupeByURL(resp.Articles)
		case isEndOfData(err):
			articles = []*entity.NewsArticle{}
		default:
			return pagination.Page[*entity.NewsArticle]{}, fmt.Errorf("search page %d: %w", q.Page, err)
		}
		s.store(ctx, key, articles)
	}

	s.markFavorites(ctx, articles)
	return pagination.NewPage(articles, q.Page, len(articles) > 0), nil
}

func (s *Service) cached(ctx context.Context, key string) ([]*entity.NewsArticle, bool) {
	if s.Cache == nil {
		return nil, false
	}
	articles, ok, err := s.Cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordSearchCache("error")
		slog.Warn("search cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	case !ok:
		metrics.RecordSearchCache("miss")
		return nil, false
	}
	metrics.RecordSearchCache("hit")
	return articles, true
}

func (s *Service) store(ctx context.Context, key string, articles []*entity.NewsArticle) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, articles); err != nil {
		slog.Warn("search cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// markFavorites sets IsFavorite on articles the user saved. A lookup failure
// only costs the flag.
func (s *Service) markFavorites(ctx context.Context, articles []*entity.NewsArticle) {
	if s.Favorites == nil || len(articles) == 0 {
		return
	}
	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		urls = append(urls, a.URL)
	}
	favs, err := s.Favorites.FavoriteURLs(ctx, urls)
	if err != nil {
		slog.Warn("favorite lookup failed", slog.Any("error", err))
		return
	}
	for _, a := range articles {
		a.IsFavorite = favs[a.URL]
	}
}

// searchCacheKey is stable for equivalent queries: case-folded, sources sorted.
// Query and source IDs are escaped so "|" and "," inside them cannot shift
// field boundaries.
func searchCacheKey(q entity.EverythingQuery) string {
	sources := make([]string, 0, len(q.Sources))
	for _, src := range q.Sources {
		sources = append(sources, url.QueryEscape(src))
	}
	slices.Sort(sources)
	return strings.Join([]string{
		url.QueryEscape(strings.ToLower(q.Query)),
		strings.Join(sources, ","),
		strconv.Itoa(q.Page),
		strconv.Itoa(q.PageSize),
	}, "|")
}

func cleanSources(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
