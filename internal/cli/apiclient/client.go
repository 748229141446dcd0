// Package apiclient is the HTTP client newsctl uses to talk to the API server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsreader/internal/common/pagination"
	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/article"
	"newsreader/internal/handler/http/source"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// Client calls the newsreader HTTP API. Token is sent as a bearer token when set.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for baseURL such as http://localhost:8080.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// HeadlinesOptions selects a headline page.
type HeadlinesOptions struct {
	Country string
	Page    int
	Limit   int
	Refresh bool
}

func (c *Client) Headlines(ctx context.Context, opts HeadlinesOptions) (*article.HeadlinesResponse, error) {
	q := url.Values{}
	setString(q, "country", opts.Country)
	setInt(q, "page", opts.Page)
	setInt(q, "limit", opts.Limit)
	if opts.Refresh {
		q.Set("refresh", "true")
	}
	var out article.HeadlinesResponse
	if err := c.do(ctx, http.MethodGet, "/headlines", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string, sources []string, page, limit int) (*pagination.Response[article.DTO], error) {
	q := url.Values{}
	q.Set("q", query)
	if len(sources) > 0 {
		q.Set("sources", strings.Join(sources, ","))
	}
	setInt(q, "page", page)
	setInt(q, "limit", limit)
	var out pagination.Response[article.DTO]
	if err := c.do(ctx, http.MethodGet, "/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Sources(ctx context.Context, f entity.SourceFilter, refresh bool) (*source.ListResponse, error) {
	q := url.Values{}
	setString(q, "category", f.Category)
	setString(q, "language", f.Language)
	setString(q, "country", f.Country)
	if refresh {
		q.Set("refresh", "true")
	}
	var out source.ListResponse
	if err := c.do(ctx, http.MethodGet, "/sources", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Favorites(ctx context.Context) ([]article.DTO, error) {
	var out struct {
		Data []article.DTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) AddFavorite(ctx context.Context, a article.DTO) (*article.DTO, error) {
	var out article.DTO
	if err := c.do(ctx, http.MethodPost, "/favorites", nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFavorite(ctx context.Context, articleURL string) error {
	q := url.Values{}
	q.Set("url", articleURL)
	return c.do(ctx, http.MethodDelete, "/favorites", q, nil, nil)
}

// ClearFavorites removes every favorite and returns how many were removed.
func (c *Client) ClearFavorites(ctx context.Context) (int64, error) {
	var out struct {
		Removed int64 `json:"removed"`
	}
	if err := c.do(ctx, http.MethodDelete, "/favorites/all", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

// ExportFavorites copies the export document in format (json or yaml) to w.
func (c *Client) ExportFavorites(ctx context.Context, format string, w io.Writer) error {
	q := url.Values{}
	q.Set("format", format)
	resp, err := c.send(ctx, http.MethodGet, "/favorites/export", q, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}

// ClearCache drops cached headlines and search pages and returns the number of deleted rows.
func (c *Client) ClearCache(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/cache", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// Countries returns the supported countries and the server default.
func (c *Client) Countries(ctx context.Context) ([]article.CountryDTO, string, error) {
	var out struct {
		Data    []article.CountryDTO `json:"data"`
		Default string               `json:"default"`
	}
	if err := c.do(ctx, http.MethodGet, "/countries", nil, nil, &out); err != nil {
		return nil, "", err
	}
	return out.Data, out.Default, nil
}

// do sends body as JSON and decodes the answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()
	return nil, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var env struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &env); err == nil {
		apiErr.Message = env.Error
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}
