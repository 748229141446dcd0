package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))

	// 型が違う値は無視
	ctx := context.WithValue(context.Background(), RequestIDKey, 42)
	assert.Empty(t, FromContext(ctx))
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "propagates caller id", incoming: "req-2024.05:10_a", keep: true},
		{name: "generates when missing", incoming: "", keep: false},
		{name: "replaces id with spaces", incoming: "hello world", keep: false},
		{name: "replaces log injection", incoming: "x\n{\"level\":\"error\"}", keep: false},
		{name: "replaces overlong id", incoming: strings.Repeat("a", 65), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/headlines", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
				return
			}
			_, err := uuid.Parse(seen)
			require.NoError(t, err)
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ids := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		ids[rec.Header().Get(RequestIDHeader)] = struct{}{}
	}
	assert.Len(t, ids, 50)
}
