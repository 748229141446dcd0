package article

import (
	"context"
	"net/http"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/auth"
	"newsreader/internal/usecase/content"
	"newsreader/internal/usecase/news"
)

// NewsService is the part of news.Service these handlers use.
type NewsService interface {
	TopHeadlines(ctx context.Context, req news.HeadlinesRequest) (*news.HeadlinesResult, error)
	Search(ctx context.Context, req news.SearchRequest) (pagination.Page[*entity.NewsArticle], error)
	ClearCache(ctx context.Context) (int64, error)
}

// ContentService resolves article detail views.
type ContentService interface {
	Get(ctx context.Context, rawURL string) (*content.Article, error)
}

// Register registers the feed, search, detail, country and cache routes.
// DELETE /cache is guarded by guard when JWT auth is configured.
func Register(mux *http.ServeMux, svc NewsService, detail ContentService, paging pagination.Config, guard *auth.Guard) {
	mux.Handle("GET /headlines", HeadlinesHandler{Svc: svc, PaginationCfg: paging})
	mux.Handle("GET /search", SearchHandler{Svc: svc, PaginationCfg: paging})
	mux.Handle("GET /articles/content", ContentHandler{Svc: detail})
	mux.Handle("GET /countries", CountriesHandler{})

	mux.Handle("DELETE /cache", guard.Require(auth.RoleAdmin)(ClearCacheHandler{Svc: svc}))
}
