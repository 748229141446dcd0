package favorite

import (
	"net/http"

	"newsreader/internal/handler/http/article"
	"newsreader/internal/handler/http/respond"
)

type ListHandler struct{ Svc Service }

// ServeHTTP お気に入り一覧（保存日時の新しい順）
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	favs, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]article.DTO, 0, len(favs))
	for _, a := range favs {
		out = append(out, article.ToDTO(a))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"data": out, "total": len(out)})
}

type StatusHandler struct{ Svc Service }

// ServeHTTP お気に入り状態確認
//
//	GET /favorites/status?url=https://www.bbc.co.uk/news/business-1
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	ok, err := h.Svc.IsFavorite(r.Context(), url)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"url": url, "is_favorite": ok})
}
