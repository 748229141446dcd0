package article

import (
	"log/slog"
	"net/http"
	"strings"

	"newsreader/internal/common/pagination"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
	"newsreader/internal/usecase/news"
)

type SearchHandler struct {
	Svc           NewsService
	PaginationCfg pagination.Config
}

// ServeHTTP 記事検索
//
//	GET /search?q=climate&sources=bbc-news,reuters&page=1&limit=20
//
// Queries shorter than three characters return an empty page.
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	q := r.URL.Query()
	var sources []string
	if raw := q.Get("sources"); raw != "" {
		sources = strings.Split(raw, ",")
	}

	page, err := h.Svc.Search(ctx, news.SearchRequest{
		Query:    q.Get("q"),
		Sources:  sources,
		Page:     params.Page,
		PageSize: params.Limit,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("search failed",
			slog.Int("page", params.Page),
			slog.String("error", respond.SanitizeError(err)))
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, pagination.NewResponse(page, params, ToDTO))
}
