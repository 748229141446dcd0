package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"newsreader/internal/handler/http/requestid"
	"newsreader/internal/handler/http/respond"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// Guard wraps mutating handlers. A nil Guard (no JWT_SECRET) lets every request through.
type Guard struct {
	Issuer *Issuer
	Logger *slog.Logger
}

// Require returns middleware that demands a valid token whose role satisfies role.
func (g *Guard) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if g == nil || g.Issuer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := g.Issuer.Parse(r.Header.Get("Authorization"))
			if err != nil {
				recordAuth("unauthorized")
				g.logger().Warn("token rejected",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("path", r.URL.Path),
					slog.Bool("missing", errors.Is(err, ErrMissingToken)))
				w.Header().Set("WWW-Authenticate", `Bearer realm="newsreader"`)
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			if !allows(claims.Role, role) {
				recordAuth("forbidden")
				respond.JSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
				return
			}
			recordAuth("success")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxClaims, claims)))
		})
	}
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// ClaimsFromContext returns the verified claims, or nil on unguarded routes.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxClaims).(*Claims)
	return c
}
