package article

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"newsreader/internal/common/pagination"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
	"newsreader/internal/usecase/news"
)

type HeadlinesHandler struct {
	Svc           NewsService
	PaginationCfg pagination.Config
}

// ServeHTTP トップニュース取得
//
//	GET /headlines?country=gb&page=2&limit=15&refresh=true
//
// The feed is served from the local cache; page 1 triggers a refresh once the
// cache is older than the feed TTL, later pages extend the cache on demand.
func (h HeadlinesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	refresh, err := parseFlag(r.URL.Query().Get("refresh"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.TopHeadlines(ctx, news.HeadlinesRequest{
		Country:      r.URL.Query().Get("country"),
		Page:         params.Page,
		PageSize:     params.Limit,
		ForceRefresh: refresh,
	})
	if err != nil {
		logger.Warn("headlines failed",
			slog.String("country", r.URL.Query().Get("country")),
			slog.Int("page", params.Page),
			slog.String("error", respond.SanitizeError(err)))
		respond.DomainError(w, err)
		return
	}

	page := pagination.NewResponse(res.Page, params, ToDTO)
	if res.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}
	respond.JSON(w, http.StatusOK, HeadlinesResponse{
		Data:       page.Data,
		Pagination: page.Pagination,
		Country:    res.Country,
		Stale:      res.Stale,
	})
}

// parseFlag accepts an empty value as false.
func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid query parameter: refresh must be a boolean")
	}
	return v, nil
}
