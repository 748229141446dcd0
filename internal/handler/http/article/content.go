package article

import (
	"errors"
	"log/slog"
	"net/http"

	"newsreader/internal/handler/http/respond"
	"newsreader/internal/observability/logging"
	"newsreader/internal/usecase/content"
)

type ContentHandler struct {
	Svc ContentService
}

// ServeHTTP 記事本文取得
//
//	GET /articles/content?url=https://www.bbc.co.uk/news/business-1
func (h ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawURL := r.URL.Query().Get("url")

	if h.Svc == nil {
		respond.SafeErrorV2(w, http.StatusServiceUnavailable, respond.NewAppError(
			http.StatusServiceUnavailable, "content fetching disabled", nil))
		return
	}

	a, err := h.Svc.Get(ctx, rawURL)
	if err != nil {
		logging.FromContext(ctx).Warn("content fetch failed",
			slog.String("url", rawURL),
			slog.String("error", respond.SanitizeError(err)))
		if appErr := contentError(err); appErr != nil {
			respond.SafeErrorV2(w, appErr.Code, appErr)
			return
		}
		respond.DomainError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, ContentDTO{
		URL:       a.URL,
		Title:     a.Title,
		Byline:    a.Byline,
		SiteName:  a.SiteName,
		Excerpt:   a.Excerpt,
		Text:      a.Text,
		LeadImage: a.LeadImage,
		Domain:    a.Domain,
		LogoURL:   a.LogoURL,
		Fallback:  a.Fallback,
	})
}

// contentError maps page fetch failures; nil means the generic mapping applies.
func contentError(err error) *respond.AppError {
	switch {
	case errors.Is(err, content.ErrInvalidURL), errors.Is(err, content.ErrPrivateIP):
		return respond.NewAppError(http.StatusBadRequest, "url is not allowed", err)
	case errors.Is(err, content.ErrDisabled):
		return respond.NewAppError(http.StatusServiceUnavailable, "content fetching disabled", err)
	case errors.Is(err, content.ErrTimeout):
		return respond.NewAppError(http.StatusGatewayTimeout, "article page timed out", err)
	case errors.Is(err, content.ErrTooManyRedirects),
		errors.Is(err, content.ErrBodyTooLarge),
		errors.Is(err, content.ErrReadabilityFailed):
		return respond.NewAppError(http.StatusUnprocessableEntity, "article content could not be extracted", err)
	default:
		return nil
	}
}
