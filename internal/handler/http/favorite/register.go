// Package favorite serves the saved-articles routes.
package favorite

import (
	"context"
	"io"
	"net/http"

	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/auth"
	favUC "newsreader/internal/usecase/favorite"
)

// Service is the part of favorite.Service used here.
type Service interface {
	List(ctx context.Context) ([]*entity.NewsArticle, error)
	Add(ctx context.Context, article *entity.NewsArticle) error
	Remove(ctx context.Context, url string) error
	IsFavorite(ctx context.Context, url string) (bool, error)
	Toggle(ctx context.Context, article *entity.NewsArticle) (bool, error)
	RemoveAll(ctx context.Context) (int64, error)
	Export(ctx context.Context, w io.Writer, format favUC.Format) error
}

// Register registers the favorite routes. Writes require an admin token when
// guard is configured; reads are public.
func Register(mux *http.ServeMux, svc Service, guard *auth.Guard) {
	write := guard.Require(auth.RoleAdmin)

	mux.Handle("GET /favorites", ListHandler{svc})
	mux.Handle("GET /favorites/status", StatusHandler{svc})
	mux.Handle("GET /favorites/export", ExportHandler{svc})

	mux.Handle("POST /favorites", write(AddHandler{svc}))
	mux.Handle("POST /favorites/toggle", write(ToggleHandler{svc}))
	mux.Handle("DELETE /favorites", write(RemoveHandler{svc}))
	mux.Handle("DELETE /favorites/all", write(ClearHandler{svc}))
}
