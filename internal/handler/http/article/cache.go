package article

import (
	"log/slog"
	"net/http"

	"newsreader/internal/handler/http/auth"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
)

// ClearCacheHandler drops cached headlines and search pages. Favorites survive.
type ClearCacheHandler struct {
	Svc NewsService
}

func (h ClearCacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.Svc.ClearCache(ctx)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	attrs := []any{slog.Int64("deleted", n)}
	if c := auth.ClaimsFromContext(ctx); c != nil {
		attrs = append(attrs, slog.String("subject", c.Subject))
	}
	logging.FromContext(ctx).Info("cache cleared", attrs...)
	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
