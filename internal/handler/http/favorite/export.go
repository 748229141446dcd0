package favorite

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"newsreader/internal/handler/http/respond"
	favUC "newsreader/internal/usecase/favorite"
)

type ExportHandler struct{ Svc Service }

// ServeHTTP お気に入りエクスポート
//
//	GET /favorites/export?format=yaml
func (h ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(favUC.FormatJSON)
	}
	format, err := favUC.ParseFormat(raw)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "format is not supported"})
		return
	}

	// 途中で失敗してもヘッダー送信前にエラーを返せるようバッファする
	var buf bytes.Buffer
	if err := h.Svc.Export(r.Context(), &buf, format); err != nil {
		if errors.Is(err, favUC.ErrUnsupportedFormat) {
			respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "format is not supported"})
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	contentType := "application/json"
	if format == favUC.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="favorites.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
