package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.opentelemetry.io/otel/attribute"

	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/observability/tracing"
	"newsreader/internal/resilience/circuitbreaker"
	"newsreader/internal/resilience/retry"
	"newsreader/internal/usecase/content"
)

// leadImageSelectors are tried in order; the first non-empty content wins.
var leadImageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
	`link[rel="image_src"]`,
}

// ReadabilityFetcher extracts article text with the Mozilla Readability
// algorithm and the lead image from the page's Open Graph tags.
// It is safe for concurrent use.
type ReadabilityFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	config  Config
}

var _ content.Fetcher = (*ReadabilityFetcher)(nil)

// Option customises a ReadabilityFetcher.
type Option func(*ReadabilityFetcher)

// WithRetryConfig overrides retry.ContentFetchConfig.
func WithRetryConfig(rc retry.Config) Option {
	return func(f *ReadabilityFetcher) { f.retry = rc }
}

// WithCircuitBreaker overrides the default content-fetch breaker.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(f *ReadabilityFetcher) { f.breaker = cb }
}

// NewReadabilityFetcher validates cfg and builds a fetcher whose redirect
// policy re-checks every hop.
func NewReadabilityFetcher(cfg Config, opts ...Option) (*ReadabilityFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("content fetcher config: %w", err)
	}

	cbCfg := circuitbreaker.ContentFetchConfig()
	cbCfg.IsSuccessful = countsAsSuccess

	f := &ReadabilityFetcher{
		breaker: circuitbreaker.New(cbCfg),
		retry:   retry.ContentFetchConfig(),
		config:  cfg,
	}
	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", content.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target: %w", err)
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch downloads rawURL and extracts its readable content.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, rawURL string) (*content.Document, error) {
	if err := validateURL(ctx, rawURL, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "content.fetch", attribute.String("url.full", rawURL))
	start := time.Now()

	doc, err := circuitbreaker.Do(f.breaker, func() (*content.Document, error) {
		var out *content.Document
		err := retry.WithBackoff(ctx, f.retry, func() error {
			var err error
			out, err = f.doFetch(ctx, rawURL)
			return err
		})
		return out, err
	})
	tracing.EndSpan(span, err)

	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		if circuitbreaker.IsRejection(err) {
			return nil, &entity.HTTPStatusError{StatusCode: http.StatusServiceUnavailable, Code: "circuitOpen", Message: err.Error()}
		}
		return nil, err
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(doc.Text))
	return doc, nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, rawURL string) (*content.Document, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request exceeded %v", content.ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, content.ErrTooManyRedirects) ||
			errors.Is(urlErr.Err, content.ErrPrivateIP) || errors.Is(urlErr.Err, content.ErrInvalidURL)) {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &entity.HTTPStatusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", entity.ErrNetwork, err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", content.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	pageURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}
	return extract(body, pageURL)
}

// extract runs Readability over body and looks up the lead image.
func extract(body []byte, pageURL *url.URL) (*content.Document, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w: no readable content found", content.ErrReadabilityFailed)
	}

	image := leadImage(body, pageURL)
	if image == "" {
		image = resolve(pageURL, article.Image)
	}

	return &content.Document{
		Title:     strings.TrimSpace(article.Title),
		Byline:    strings.TrimSpace(article.Byline),
		SiteName:  strings.TrimSpace(article.SiteName),
		Excerpt:   strings.TrimSpace(article.Excerpt),
		Text:      text,
		LeadImage: image,
	}, nil
}

func leadImage(body []byte, pageURL *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Debug("lead image lookup skipped", slog.Any("error", err))
		return ""
	}
	for _, sel := range leadImageSelectors {
		node := doc.Find(sel).First()
		val, ok := node.Attr("content")
		if !ok {
			val, _ = node.Attr("href")
		}
		if img := resolve(pageURL, val); img != "" {
			return img
		}
	}
	return ""
}

// resolve makes ref absolute against base and keeps only http(s) results.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// countsAsSuccess keeps per-page failures (bad URLs, 4xx, unreadable pages)
// from opening the breaker, which guards against outbound network trouble.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, content.ErrInvalidURL) ||
		errors.Is(err, content.ErrPrivateIP) ||
		errors.Is(err, content.ErrTooManyRedirects) ||
		errors.Is(err, content.ErrBodyTooLarge) ||
		errors.Is(err, content.ErrReadabilityFailed) {
		return true
	}
	var httpErr *entity.HTTPStatusError
	if errors.As(err, &httpErr) {
		return !httpErr.IsServerError() && httpErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
