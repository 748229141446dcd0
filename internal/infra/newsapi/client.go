// Package newsapi is the HTTP client of the upstream news API (newsapi.org v2).
package newsapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/observability/tracing"
	"newsreader/internal/repository"
	"newsreader/internal/resilience/circuitbreaker"
	"newsreader/internal/resilience/retry"
)

const (
	endpointTopHeadlines = "top-headlines"
	endpointEverything   = "everything"
	endpointSources      = "sources"

	// MaxPageSize is the largest pageSize the API accepts.
	MaxPageSize = 100

	maxBodyBytes = 4 << 20
)

// Client calls the news API through a rate limiter, a retry loop and a circuit breaker.
// It is safe for concurrent use.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

var _ repository.NewsRemote = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig overrides retry.NewsAPIConfig.
func WithRetryConfig(rc retry.Config) Option {
	return func(c *Client) { c.retry = rc }
}

// WithCircuitBreaker overrides the default breaker.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cbCfg := circuitbreaker.NewsAPIConfig()
	cbCfg.IsSuccessful = countsAsSuccess

	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		breaker: circuitbreaker.New(cbCfg),
		retry:   retry.NewsAPIConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TopHeadlines fetches GET /v2/top-headlines.
func (c *Client) TopHeadlines(ctx context.Context, q entity.HeadlinesQuery) (*entity.NewsResponse, error) {
	params := url.Values{}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	setPaging(params, q.Page, q.PageSize)

	env, err := c.get(ctx, endpointTopHeadlines, "/v2/top-headlines", params,
		attribute.String("newsapi.country", q.Country),
		attribute.Int("newsapi.page", q.Page),
	)
	if err != nil {
		return nil, err
	}
	return env.toResponse(), nil
}

// Everything fetches GET /v2/everything. Either Query or Sources must be set.
func (c *Client) Everything(ctx context.Context, q entity.EverythingQuery) (*entity.NewsResponse, error) {
	query := strings.TrimSpace(q.Query)
	if query == "" && len(q.Sources) == 0 {
		return nil, &entity.ValidationError{Field: "q", Message: "query or sources is required"}
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if len(q.Sources) > 0 {
		params.Set("sources", strings.Join(q.Sources, ","))
	}
	setPaging(params, q.Page, q.PageSize)

	env, err := c.get(ctx, endpointEverything, "/v2/everything", params,
		attribute.Int("newsapi.page", q.Page),
		attribute.Int("newsapi.sources", len(q.Sources)),
	)
	if err != nil {
		return nil, err
	}
	return env.toResponse(), nil
}

// Sources fetches GET /v2/top-headlines/sources. Empty filter fields are not sent.
func (c *Client) Sources(ctx context.Context, f entity.SourceFilter) ([]*entity.NewsSource, error) {
	params := url.Values{}
	if f.Category != "" {
		params.Set("category", strings.ToLower(f.Category))
	}
	if f.Language != "" {
		params.Set("language", strings.ToLower(f.Language))
	}
	if f.Country != "" {
		params.Set("country", strings.ToLower(f.Country))
	}

	env, err := c.get(ctx, endpointSources, "/v2/top-headlines/sources", params)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.NewsSource, 0, len(env.Sources))
	for _, s := range env.Sources {
		if s.ID == "" {
			continue
		}
		out = append(out, s.toEntity())
	}
	return out, nil
}

// Ping reports an open circuit without calling the API, so health probes
// never spend request quota.
func (c *Client) Ping(context.Context) error {
	if c.breaker.IsOpen() {
		return fmt.Errorf("circuit %s is open", c.breaker.Name())
	}
	return nil
}

func setPaging(params url.Values, page, pageSize int) {
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(min(pageSize, MaxPageSize)))
	}
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, attrs ...attribute.KeyValue) (*envelope, error) {
	ctx, span := tracing.StartSpan(ctx, "newsapi."+endpoint,
		append(attrs, attribute.String("newsapi.endpoint", endpoint))...)
	start := time.Now()

	env, err := circuitbreaker.Do(c.breaker, func() (*envelope, error) {
		var out *envelope
		err := retry.WithBackoff(ctx, c.retry, func() error {
			var err error
			out, err = c.do(ctx, path, params)
			return err
		})
		return out, err
	})
	if circuitbreaker.IsRejection(err) {
		err = &entity.HTTPStatusError{StatusCode: http.StatusServiceUnavailable, Code: "circuitOpen", Message: err.Error()}
	}

	metrics.RecordNewsAPIRequest(endpoint, metrics.OutcomeOf(err), time.Since(start))
	tracing.EndSpan(span, err)

	if err != nil {
		return nil, fmt.Errorf("newsapi %s: %w", endpoint, err)
	}
	return env, nil
}

// do performs one attempt.
func (c *Client) do(ctx context.Context, path string, params url.Values) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := make(url.Values, len(params)+1)
	for k, v := range params {
		q[k] = v
	}
	q.Set("apiKey", c.cfg.APIKey)

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", redact(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.attemptErr(ctx, attemptCtx, "", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.attemptErr(ctx, attemptCtx, "read body: ", err)
	}
	return decode(resp.StatusCode, body)
}

// attemptErr classifies a transport failure. Only the caller's own context
// ending yields a context error; an attempt running out of time is a
// network failure that counts against the breaker.
func (c *Client) attemptErr(ctx, attemptCtx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if attemptCtx.Err() != nil {
		return fmt.Errorf("%w: %s%w", entity.ErrNetwork, op, attemptTimeout(c.cfg.Timeout))
	}
	return fmt.Errorf("%w: %s%w", entity.ErrNetwork, op, redact(err))
}

// attemptTimeout is a net.Error so the retry loop treats it as transient.
// It must not wrap context.DeadlineExceeded, which countsAsSuccess reads as
// the caller giving up.
type attemptTimeout time.Duration

func (d attemptTimeout) Error() string {
	return fmt.Sprintf("no answer within %s", time.Duration(d))
}

func (attemptTimeout) Timeout() bool   { return true }
func (attemptTimeout) Temporary() bool { return true }

// decode classifies an upstream answer.
func decode(status int, body []byte) (*envelope, error) {
	success := status >= 200 && status < 300

	var env envelope
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if success {
				return nil, fmt.Errorf("%w: decode body: %v", entity.ErrNoData, err)
			}
			env = envelope{}
		}
	}

	switch {
	case !success:
		return nil, &entity.HTTPStatusError{StatusCode: status, Code: env.Code, Message: env.Message}
	case env.Status == "":
		return nil, entity.ErrNoData
	case env.Status == "error":
		return nil, &entity.HTTPStatusError{StatusCode: status, Code: env.Code, Message: env.Message}
	}
	return &env, nil
}

// countsAsSuccess keeps caller mistakes, empty answers and the caller's own
// cancellation from tripping the breaker. Attempt timeouts never reach here
// as context errors (see attemptErr).
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, entity.ErrNoData) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var httpErr *entity.HTTPStatusError
	if errors.As(err, &httpErr) {
		return !httpErr.IsServerError() && httpErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// redact strips the apiKey query parameter from URLs carried by err.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: RedactURL(ue.URL), Err: ue.Err}
}

// RedactURL masks the apiKey query parameter of raw.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	if q.Has("apiKey") {
		q.Set("apiKey", "****")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
