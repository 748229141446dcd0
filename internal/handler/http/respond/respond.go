// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"newsreader/internal/domain/entity"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Log the error but cannot send error response as headers already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// SafeError sanitizes error messages before returning them to users.
// Internal errors (e.g., database errors) are returned as "internal server error",
// with details logged for debugging. Safe errors (validation errors) are returned as-is.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()

	// バリデーションエラーなど、ユーザーに返してOKなエラー
	safeErrors := []string{
		"required",
		"invalid",
		"not found",
		"not a favorite",
		"not supported",
		"must be",
		"too long",
		"rate limit exceeded",
	}

	isSafe := false
	lowerMsg := strings.ToLower(msg)
	for _, safe := range safeErrors {
		if strings.Contains(lowerMsg, safe) {
			isSafe = true
			break
		}
	}

	// 500エラーは常に内部エラーとして扱う
	if code >= 500 {
		isSafe = false
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

// UpstreamStatus maps an error from the news API or the article fetcher to a response status.
//
//   - validation errors            -> 400
//   - network / circuit open        -> 503
//   - deadline exceeded             -> 504
//   - upstream 4xx (other than 429) -> 502
//   - upstream 5xx, no data, other  -> 502
func UpstreamStatus(err error) int {
	var (
		valErr  *entity.ValidationError
		httpErr *entity.HTTPStatusError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, entity.ErrNetwork):
		return http.StatusServiceUnavailable
	case errors.As(err, &httpErr):
		switch {
		case httpErr.Code == "circuitOpen":
			return http.StatusServiceUnavailable
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return http.StatusTooManyRequests
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusBadGateway
	}
}

// UpstreamError writes err with the status chosen by UpstreamStatus.
// Validation errors keep their own message; everything else is collapsed
// with entity.UserMessage so upstream details never reach the client.
func UpstreamError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	code := UpstreamStatus(err)

	var valErr *entity.ValidationError
	if errors.As(err, &valErr) {
		JSON(w, code, map[string]string{"error": valErr.Message})
		return
	}

	slog.Default().Warn("upstream error",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": entity.UserMessage(err)})
}

// IsUpstream reports whether err came from the news API or a page fetch
// rather than from local storage.
func IsUpstream(err error) bool {
	var httpErr *entity.HTTPStatusError
	return errors.Is(err, entity.ErrNetwork) ||
		errors.Is(err, entity.ErrNoData) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &httpErr)
}

// DomainError writes the response for an error returned by a use case:
// validation -> 400, not found -> 404, upstream -> UpstreamError, anything else -> 500.
func DomainError(w http.ResponseWriter, err error) {
	var valErr *entity.ValidationError
	switch {
	case err == nil:
		return
	case errors.As(err, &valErr):
		JSON(w, http.StatusBadRequest, map[string]string{"error": valErr.Message})
	case errors.Is(err, entity.ErrNotFound):
		JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case IsUpstream(err):
		UpstreamError(w, err)
	default:
		SafeError(w, http.StatusInternalServerError, err)
	}
}

// AppError pairs a status and a fixed client message with the internal cause.
// The content endpoint uses it to map fetcher failures (blocked URL, timeout,
// unreadable page) without exposing the target page's details.
type AppError struct {
	UserMsg string
	Err     error
	Code    int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeErrorV2 writes an AppError's status and message and logs its cause.
// Any other error goes through SafeError with code.
func SafeErrorV2(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("application error",
				slog.String("status", http.StatusText(appErr.Code)),
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}

	SafeError(w, code, err)
}
