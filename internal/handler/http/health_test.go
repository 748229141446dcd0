package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newPingDB(t *testing.T, maxOpen int) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(maxOpen)
	return db, mock
}

func getHealth(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec, body
}

/* ───────── /health ───────── */

func TestHealthHandler(t *testing.T) {
	fixed := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		dbErr      error
		optional   map[string]Pinger
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "database only",
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "healthy"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("dial tcp: connect: connection refused"),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"database": "unhealthy"},
		},
		{
			name: "cache down degrades only",
			optional: map[string]Pinger{
				"search_cache": stubPinger{err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")},
				"news_api":     stubPinger{},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "healthy", "search_cache": "degraded", "news_api": "healthy"},
		},
		{
			name:       "open circuit degrades only",
			optional:   map[string]Pinger{"news_api": stubPinger{err: errors.New("circuit newsapi is open")}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "healthy", "news_api": "degraded"},
		},
		{
			name:       "nil optional dependency is skipped",
			optional:   map[string]Pinger{"search_cache": nil},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t, 10)
			if tt.dbErr != nil {
				mock.ExpectPing().WillReturnError(tt.dbErr)
			} else {
				mock.ExpectPing()
			}

			h := &HealthHandler{DB: db, Optional: tt.optional, Version: "1.2.3", now: func() time.Time { return fixed }}
			rec, body := getHealth(t, h)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Equal(t, "2024-05-10T08:00:00Z", body.Timestamp)

			got := map[string]string{}
			for name, c := range body.Checks {
				got[name] = c.Status
			}
			assert.Equal(t, tt.wantChecks, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHealthHandler_MasksDSNInMessage(t *testing.T) {
	db, mock := newPingDB(t, 10)
	mock.ExpectPing().WillReturnError(errors.New("connect postgres://news:hunter2@db:5432/news failed"))

	_, body := getHealth(t, &HealthHandler{DB: db})
	msg := body.Checks["database"].Message
	assert.NotContains(t, msg, "hunter2")
	assert.Contains(t, msg, "news:****@")
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	rec, body := getHealth(t, &HealthHandler{})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not configured", body.Checks["database"].Message)
}

func TestHealthHandler_UnlimitedPoolDegrades(t *testing.T) {
	db, mock := newPingDB(t, 0)
	mock.ExpectPing()

	rec, body := getHealth(t, &HealthHandler{DB: db})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "DB_MAX_OPEN_CONNS is unlimited", body.Checks["database"].Message)
}

/* ───────── /ready, /live ───────── */

func TestReadyHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		db, mock := newPingDB(t, 10)
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", rec.Body.String())
	})

	t.Run("database not ready", func(t *testing.T) {
		db, mock := newPingDB(t, 10)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		(&ReadyHandler{DB: db}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "database not ready")
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		(&ReadyHandler{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
