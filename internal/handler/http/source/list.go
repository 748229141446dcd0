package source

import (
	"log/slog"
	"net/http"
	"strconv"

	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
)

type ListHandler struct{ Svc Catalog }

// ServeHTTP ソース一覧
//
//	GET /sources?category=technology&language=en&country=us&refresh=false
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	refresh := false
	if raw := q.Get("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid query parameter: refresh must be a boolean"})
			return
		}
		refresh = v
	}

	filter := entity.SourceFilter{
		Category: q.Get("category"),
		Language: q.Get("language"),
		Country:  q.Get("country"),
	}
	listing, err := h.Svc.List(r.Context(), filter, refresh)
	if err != nil {
		logging.FromContext(r.Context()).Warn("list sources failed",
			slog.String("error", respond.SanitizeError(err)))
		respond.DomainError(w, err)
		return
	}

	out := make([]DTO, 0, len(listing.Sources))
	for _, s := range listing.Sources {
		out = append(out, toDTO(s))
	}
	if listing.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}
	respond.JSON(w, http.StatusOK, ListResponse{Data: out, Total: len(out), Stale: listing.Stale})
}
