package source_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/article"
	"newsreader/internal/handler/http/source"
	srcUC "newsreader/internal/usecase/source"
)

/* ───────── スタブ ───────── */

type stubCatalog struct {
	listing    *srcUC.Listing
	src        *srcUC.Source
	err        error // 強制エラー注入用
	gotFilter  entity.SourceFilter
	gotRefresh bool
	gotID      string
}

func (s *stubCatalog) List(_ context.Context, f entity.SourceFilter, refresh bool) (*srcUC.Listing, error) {
	s.gotFilter, s.gotRefresh = f, refresh
	return s.listing, s.err
}

func (s *stubCatalog) Get(_ context.Context, id string) (*srcUC.Source, error) {
	s.gotID = id
	return s.src, s.err
}

type stubArticles struct {
	page    pagination.Page[*entity.NewsArticle]
	err     error
	gotID   string
	gotPage int
	gotSize int
}

func (s *stubArticles) BySource(_ context.Context, id string, page, size int) (pagination.Page[*entity.NewsArticle], error) {
	s.gotID, s.gotPage, s.gotSize = id, page, size
	return s.page, s.err
}

func bbc() srcUC.Source {
	return srcUC.Source{
		NewsSource: &entity.NewsSource{
			ID:       "bbc-news",
			Name:     "BBC News",
			URL:      "http://www.bbc.co.uk/news",
			Category: "general",
			Language: "en",
			Country:  "gb",
		},
		Domain:  "www.bbc.co.uk",
		LogoURL: "https://logo.clearbit.com/bbc.co.uk",
	}
}

func newMux(cat *stubCatalog, arts *stubArticles) *http.ServeMux {
	mux := http.NewServeMux()
	source.Register(mux, cat, arts, pagination.DefaultConfig())
	return mux
}

func get(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

/* ───────── GET /sources ───────── */

func TestList(t *testing.T) {
	cat := &stubCatalog{listing: &srcUC.Listing{Sources: []srcUC.Source{bbc()}}}

	rec := get(t, newMux(cat, &stubArticles{}), "/sources?category=general&language=en&country=gb&refresh=1")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, entity.SourceFilter{Category: "general", Language: "en", Country: "gb"}, cat.gotFilter)
	assert.True(t, cat.gotRefresh)

	var body source.ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "www.bbc.co.uk", body.Data[0].Domain)
	assert.Equal(t, "https://logo.clearbit.com/bbc.co.uk", body.Data[0].LogoURL)
	assert.False(t, body.Stale)
}

func TestList_StaleAndEmpty(t *testing.T) {
	cat := &stubCatalog{listing: &srcUC.Listing{Stale: true}}

	rec := get(t, newMux(cat, &stubArticles{}), "/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Warning"))
	assert.JSONEq(t, `{"data":[],"total":0,"stale":true}`, rec.Body.String())
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		err      error
		wantCode int
	}{
		{name: "bad refresh", target: "/sources?refresh=sometimes", wantCode: http.StatusBadRequest},
		{name: "upstream down, nothing cached", target: "/sources", err: fmt.Errorf("list sources: %w", entity.ErrNetwork), wantCode: http.StatusServiceUnavailable},
		{name: "storage", target: "/sources", err: errors.New("list sources: disk I/O error"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newMux(&stubCatalog{err: tt.err}, &stubArticles{}), tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

/* ───────── GET /sources/{id} ───────── */

func TestGet(t *testing.T) {
	src := bbc()
	cat := &stubCatalog{src: &src}

	rec := get(t, newMux(cat, &stubArticles{}), "/sources/bbc-news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bbc-news", cat.gotID)

	var body source.DTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "BBC News", body.Name)
	assert.Equal(t, "gb", body.Country)
}

func TestGet_NotFound(t *testing.T) {
	cat := &stubCatalog{err: srcUC.ErrSourceNotFound}

	rec := get(t, newMux(cat, &stubArticles{}), "/sources/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"source not found"}`, rec.Body.String())
}

/* ───────── GET /sources/{id}/articles ───────── */

func TestArticles(t *testing.T) {
	arts := &stubArticles{page: pagination.NewPage([]*entity.NewsArticle{
		{Title: "Markets rally", URL: "https://www.bbc.co.uk/news/business-1", Source: entity.Source{ID: "bbc-news", Name: "BBC News"}},
	}, 2, false)}

	rec := get(t, newMux(&stubCatalog{}, arts), "/sources/bbc-news/articles?page=2&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bbc-news", arts.gotID)
	assert.Equal(t, 2, arts.gotPage)
	assert.Equal(t, 10, arts.gotSize)

	var body pagination.Response[article.DTO]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	require.NotNil(t, body.Pagination.PrevPage)
	assert.Equal(t, 1, *body.Pagination.PrevPage)
	assert.Nil(t, body.Pagination.NextPage)
}

func TestArticles_Errors(t *testing.T) {
	rec := get(t, newMux(&stubCatalog{}, &stubArticles{}), "/sources/bbc-news/articles?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	arts := &stubArticles{err: &entity.HTTPStatusError{StatusCode: 429, Code: "rateLimited"}}
	rec = get(t, newMux(&stubCatalog{}, arts), "/sources/bbc-news/articles")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
