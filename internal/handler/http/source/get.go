package source

import (
	"errors"
	"net/http"

	"newsreader/internal/handler/http/respond"
	srcUC "newsreader/internal/usecase/source"
)

type GetHandler struct{ Svc Catalog }

// ServeHTTP ソース詳細
//
//	GET /sources/bbc-news
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	src, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, srcUC.ErrSourceNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(*src))
}
