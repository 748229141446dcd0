package source

import (
	"log/slog"
	"net/http"

	"newsreader/internal/common/pagination"
	"newsreader/internal/handler/http/article"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
)

type ArticlesHandler struct {
	Svc           Articles
	PaginationCfg pagination.Config
}

// ServeHTTP ソース別記事一覧
//
//	GET /sources/bbc-news/articles?page=1&limit=20
func (h ArticlesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	id := r.PathValue("id")
	page, err := h.Svc.BySource(r.Context(), id, params.Page, params.Limit)
	if err != nil {
		logging.FromContext(r.Context()).Warn("source articles failed",
			slog.String("source", id),
			slog.String("error", respond.SanitizeError(err)))
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(page, params, article.ToDTO))
}
