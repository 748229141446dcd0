// Package source serves the publisher catalog and per-source article lists.
package source

import (
	"context"
	"net/http"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	srcUC "newsreader/internal/usecase/source"
)

// Catalog is the part of source.Service used here.
type Catalog interface {
	List(ctx context.Context, filter entity.SourceFilter, forceRefresh bool) (*srcUC.Listing, error)
	Get(ctx context.Context, id string) (*srcUC.Source, error)
}

// Articles lists the articles of a single source.
type Articles interface {
	BySource(ctx context.Context, sourceID string, page, pageSize int) (pagination.Page[*entity.NewsArticle], error)
}

// Register registers the catalog routes. All of them are read-only.
func Register(mux *http.ServeMux, svc Catalog, articles Articles, paging pagination.Config) {
	mux.Handle("GET /sources", ListHandler{Svc: svc})
	mux.Handle("GET /sources/{id}", GetHandler{Svc: svc})
	mux.Handle("GET /sources/{id}/articles", ArticlesHandler{Svc: articles, PaginationCfg: paging})
}
