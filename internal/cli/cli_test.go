package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsreader/internal/handler/http/auth"
)

/* ───────── 偽 API サーバー ───────── */

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /headlines", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"title":"Markets rally","url":"https://www.bbc.co.uk/news/business-1","source":{"id":"bbc-news","name":"BBC News"},"published_at":"2021-09-29T13:01:31Z","published_at_display":"Sep 29, 2021 01:01 PM","is_favorite":true}],"pagination":{"page":2,"limit":1,"prev_page":1,"next_page":3},"country":"gb","stale":true}`)
	})
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[],"pagination":{"page":1,"limit":15,"prev_page":null,"next_page":null}}`)
	})
	mux.HandleFunc("GET /sources", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"id":"bbc-news","name":"BBC News","url":"http://www.bbc.co.uk/news","category":"general","language":"en","country":"gb"}],"total":1,"stale":false}`)
	})
	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[],"total":0}`)
	})
	mux.HandleFunc("POST /favorites", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"authentication required"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"title":"Markets rally","url":"https://www.bbc.co.uk/news/business-1","source":{"name":""},"published_at":"","published_at_display":"","is_favorite":true}`)
	})
	mux.HandleFunc("DELETE /favorites", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"article is not a favorite"}`)
	})
	mux.HandleFunc("DELETE /favorites/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"removed":4}`)
	})
	mux.HandleFunc("GET /favorites/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte("- title: Markets rally\n"))
	})
	mux.HandleFunc("DELETE /cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{"error":"Network error. Please check your connection."}`)
	})
	mux.HandleFunc("GET /countries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"code":"gb","name":"United Kingdom","flag":"🇬🇧"},{"code":"us","name":"United States","flag":"🇺🇸"}],"default":"us"}`)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if r.Body != nil {
			_, _ = buf.ReadFrom(r.Body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.bodies = append(f.bodies, buf.String())
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1], f.bodies[len(f.bodies)-1]
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

/* ───────── ヘルパー ───────── */

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"NEWSCTL_API_URL", "NEWSCTL_API_TOKEN", "NEWSCTL_OUTPUT_FORMAT", "NEWSCTL_AUTH_SECRET", "JWT_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func startAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	isolateEnv(t)
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return api, srv.URL
}

/* ───────── 1. 記事 ───────── */

func TestHeadlines_Table(t *testing.T) {
	api, url := startAPI(t)

	out, errOut, err := run(t, "--api-url", url, "headlines", "--country", "gb", "--page", "2", "--limit", "1")
	require.NoError(t, err)

	req, _ := api.last()
	assert.Equal(t, "gb", req.URL.Query().Get("country"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, "1", req.URL.Query().Get("limit"))
	assert.Empty(t, req.URL.Query().Get("refresh"))

	assert.Contains(t, out, "Markets rally")
	assert.Contains(t, out, "Sep 29, 2021 01:01 PM")
	assert.Contains(t, out, "page 2 | 1 articles | prev: 1 | next: 3")
	assert.Contains(t, errOut, "cached headlines for GB")
}

func TestHeadlines_JSON(t *testing.T) {
	_, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "-o", "json", "headlines", "--refresh")
	require.NoError(t, err)

	var body struct {
		Country string `json:"country"`
		Stale   bool   `json:"stale"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "gb", body.Country)
	assert.True(t, body.Stale)
}

func TestSearch(t *testing.T) {
	api, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "search", "climate", "change", "--sources", "bbc-news,cnn")
	require.NoError(t, err)

	req, _ := api.last()
	assert.Equal(t, "climate change", req.URL.Query().Get("q"))
	assert.Equal(t, "bbc-news,cnn", req.URL.Query().Get("sources"))
	assert.Contains(t, out, `no articles match "climate change"`)

	_, _, err = run(t, "--api-url", url, "search")
	require.Error(t, err)
}

func TestSources(t *testing.T) {
	api, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "sources", "--category", "general", "--language", "en")
	require.NoError(t, err)

	req, _ := api.last()
	assert.Equal(t, "general", req.URL.Query().Get("category"))
	assert.Equal(t, "en", req.URL.Query().Get("language"))
	assert.Contains(t, out, "bbc-news")
	assert.Contains(t, out, "1 sources")
}

/* ───────── 2. お気に入り ───────── */

func TestFavorites_AddSendsTokenAndBody(t *testing.T) {
	api, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "--token", "secret-token",
		"favorites", "add", "https://www.bbc.co.uk/news/business-1", "--title", "Markets rally", "--source", "BBC News")
	require.NoError(t, err)
	assert.Contains(t, out, "saved https://www.bbc.co.uk/news/business-1")

	req, body := api.last()
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &sent))
	assert.Equal(t, "Markets rally", sent["title"])
	assert.Equal(t, "BBC News", sent["source"].(map[string]any)["name"])
}

func TestFavorites_AddWithoutToken(t *testing.T) {
	_, url := startAPI(t)

	_, _, err := run(t, "--api-url", url, "favorites", "add", "https://example.com/a", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "authentication required")
}

func TestFavorites_AddRequiresTitle(t *testing.T) {
	_, url := startAPI(t)
	_, _, err := run(t, "--api-url", url, "favorites", "add", "https://example.com/a")
	require.Error(t, err)
}

func TestFavorites_RemoveNotFoundWarns(t *testing.T) {
	api, url := startAPI(t)

	_, errOut, err := run(t, "--api-url", url, "fav", "rm", "https://example.com/a b")
	require.NoError(t, err)
	assert.Contains(t, errOut, "is not a favorite")

	req, _ := api.last()
	assert.Equal(t, "https://example.com/a b", req.URL.Query().Get("url"))
}

func TestFavorites_ListEmptyClearExport(t *testing.T) {
	_, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "favorites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no favorites yet")

	out, _, err = run(t, "--api-url", url, "favorites", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 4 favorites")

	out, _, err = run(t, "--api-url", url, "favorites", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- title: Markets rally\n", out)
}

/* ───────── 3. その他 ───────── */

func TestCacheClear_ServerError(t *testing.T) {
	_, url := startAPI(t)

	_, _, err := run(t, "--api-url", url, "cache", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCountries(t *testing.T) {
	_, url := startAPI(t)

	out, _, err := run(t, "--api-url", url, "countries")
	require.NoError(t, err)
	assert.Contains(t, out, "United Kingdom")
	assert.Contains(t, out, "us (default)")
}

func TestToken(t *testing.T) {
	isolateEnv(t)
	const secret = "test-secret-key-at-least-32-characters-long"
	t.Setenv("JWT_SECRET", secret)

	out, _, err := run(t, "token", "--subject", "ops", "--role", "viewer", "--ttl", "1h")
	require.NoError(t, err)

	iss, err := auth.NewIssuer(secret)
	require.NoError(t, err)
	claims, err := iss.Parse("Bearer " + strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, auth.RoleViewer, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestToken_Errors(t *testing.T) {
	isolateEnv(t)

	_, _, err := run(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing secret is required")

	t.Setenv("NEWSCTL_AUTH_SECRET", "short")
	_, _, err = run(t, "token")
	require.ErrorIs(t, err, auth.ErrWeakSecret)

	_, _, err = run(t, "token", "--role", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

/* ───────── 4. 設定 ───────── */

func TestConfigFileAndEnv(t *testing.T) {
	isolateEnv(t)
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "newsctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  url: "+srv.URL+"\n  token: secret-token\noutput:\n  format: json\n"), 0o600))

	out, _, err := run(t, "--config", path, "favorites", "add", "https://example.com/a", "--title", "x")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "json output selected by config file")

	// 環境変数は設定ファイルより優先される
	t.Setenv("NEWSCTL_OUTPUT_FORMAT", "table")
	out, _, err = run(t, "--config", path, "favorites", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 4 favorites")
}

func TestConfig_Invalid(t *testing.T) {
	isolateEnv(t)

	_, _, err := run(t, "--api-url", "localhost:8080", "countries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api url")

	_, _, err = run(t, "--output", "xml", "countries")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [\n"), 0o600))
	_, _, err = run(t, "--config", path, "countries")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}
