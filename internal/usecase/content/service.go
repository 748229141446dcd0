package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/repository"
	"newsreader/internal/utils/text"
	"newsreader/internal/utils/urlutil"
)

// Document is what a Fetcher extracts from one article page.
type Document struct {
	Title     string
	Byline    string
	SiteName  string
	Excerpt   string
	Text      string
	LeadImage string
}

// Fetcher downloads an article page and extracts its readable content.
//
// Implementations must refuse URLs resolving to private addresses, bound the
// body size and the redirect chain, and honour ctx.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// Article is the detail view of one article.
type Article struct {
	URL       string
	Title     string
	Byline    string
	SiteName  string
	Excerpt   string
	Text      string
	LeadImage string
	Domain    string
	LogoURL   string
	// Fallback is set when the page could not be fetched and the cached
	// headline's description and content were served instead.
	Fallback bool
}

// Service resolves article detail views.
// Articles may be nil; Fetcher may be nil to disable page downloads.
type Service struct {
	Fetcher  Fetcher
	Articles repository.NewsRepository
	// MaxTextRunes truncates the extracted text. Zero keeps it whole.
	MaxTextRunes int
}

// Get returns the readable content of rawURL.
//
// When the download fails and the article is cached locally, its cached text
// is served with Fallback set. Validation failures are never masked.
func (s *Service) Get(ctx context.Context, rawURL string) (*Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := entity.ValidateArticleURL(rawURL); err != nil {
		return nil, err
	}

	fetchErr := ErrDisabled
	if s.Fetcher != nil {
		doc, err := s.Fetcher.Fetch(ctx, rawURL)
		if err == nil {
			return s.fromDocument(rawURL, doc), nil
		}
		if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrPrivateIP) || ctx.Err() != nil {
			return nil, fmt.Errorf("get content: %w", err)
		}
		fetchErr = err
	}

	cached, err := s.cached(ctx, rawURL)
	if err != nil {
		slog.Warn("cached article lookup failed",
			slog.String("url", rawURL),
			slog.Any("error", err))
	}
	if cached == nil {
		return nil, fmt.Errorf("get content: %w", fetchErr)
	}

	slog.Info("serving cached article content",
		slog.String("url", rawURL),
		slog.Any("fetch_error", fetchErr))
	metrics.RecordContentFetchCached()
	return s.fromCached(cached), nil
}

func (s *Service) cached(ctx context.Context, rawURL string) (*entity.NewsArticle, error) {
	if s.Articles == nil {
		return nil, nil
	}
	return s.Articles.GetByURL(ctx, rawURL)
}

func (s *Service) fromDocument(rawURL string, doc *Document) *Article {
	a := &Article{
		URL:       rawURL,
		Title:     doc.Title,
		Byline:    doc.Byline,
		SiteName:  doc.SiteName,
		Excerpt:   doc.Excerpt,
		Text:      s.truncate(doc.Text),
		LeadImage: doc.LeadImage,
	}
	a.Domain, _ = urlutil.DomainName(rawURL)
	a.LogoURL = urlutil.LogoURL(rawURL)
	return a
}

func (s *Service) fromCached(n *entity.NewsArticle) *Article {
	body := n.Content
	if body == "" {
		body = n.Description
	}
	a := &Article{
		URL:       n.URL,
		Title:     n.Title,
		Byline:    n.Author,
		SiteName:  n.Source.Name,
		Excerpt:   n.Description,
		Text:      s.truncate(body),
		LeadImage: n.URLToImage,
		Fallback:  true,
	}
	a.Domain, _ = urlutil.DomainName(n.URL)
	a.LogoURL = urlutil.LogoURL(n.URL)
	return a
}

func (s *Service) truncate(body string) string {
	if s.MaxTextRunes <= 0 {
		return body
	}
	return text.Truncate(body, s.MaxTextRunes)
}
