package favorite

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/article"
	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
	favUC "newsreader/internal/usecase/favorite"
)

// decodeArticle reads an article.DTO body.
func decodeArticle(r *http.Request) (*entity.NewsArticle, error) {
	var in article.DTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, errors.New("invalid request body")
	}
	return article.FromDTO(in), nil
}

type AddHandler struct{ Svc Service }

// ServeHTTP お気に入り追加
func (h AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, err := decodeArticle(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Add(r.Context(), a); err != nil {
		respond.DomainError(w, err)
		return
	}
	logging.FromContext(r.Context()).Info("favorite added", slog.String("url", a.URL))
	respond.JSON(w, http.StatusCreated, article.ToDTO(a))
}

type ToggleHandler struct{ Svc Service }

// ServeHTTP お気に入り切り替え
func (h ToggleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a, err := decodeArticle(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	fav, err := h.Svc.Toggle(r.Context(), a)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"url": a.URL, "is_favorite": fav})
}

type RemoveHandler struct{ Svc Service }

// ServeHTTP お気に入り削除
//
//	DELETE /favorites?url=https://www.bbc.co.uk/news/business-1
func (h RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if err := h.Svc.Remove(r.Context(), url); err != nil {
		if errors.Is(err, favUC.ErrNotFavorite) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ClearHandler struct{ Svc Service }

// ServeHTTP お気に入り全削除
func (h ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.RemoveAll(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	logging.FromContext(r.Context()).Info("favorites cleared", slog.Int64("removed", n))
	respond.JSON(w, http.StatusOK, map[string]int64{"removed": n})
}
