package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/repository"
	"newsreader/internal/usecase/event"
	"newsreader/internal/utils/urlutil"
)

// DefaultTTL is how long a fetched catalog is served before it is refetched.
const DefaultTTL = 7 * 24 * time.Hour

// Service provides the source catalog use cases.
type Service struct {
	Repo   repository.SourceRepository
	Remote repository.NewsRemote
	Events event.Publisher
	TTL    time.Duration
	Now    func() time.Time
}

// Source is a catalog entry with display helpers derived from its URL.
type Source struct {
	*entity.NewsSource
	Domain  string
	LogoURL string
}

// Listing is the result of List. Stale is set when the upstream failed and
// an expired catalog was served.
type Listing struct {
	Sources []Source
	Stale   bool
}

// List returns the catalog entries matching filter, refetching the catalog
// when it is empty, expired or forceRefresh is set.
func (s *Service) List(ctx context.Context, filter entity.SourceFilter, forceRefresh bool) (*Listing, error) {
	cached, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	fresh, err := s.isFresh(ctx, len(cached))
	if err != nil {
		return nil, err
	}

	listing := &Listing{}
	if forceRefresh || !fresh {
		fetched, err := s.refresh(ctx)
		switch {
		case err == nil:
			cached = fetched
		case len(cached) > 0:
			slog.Warn("serving stale source catalog", slog.Any("error", err))
			listing.Stale = true
		default:
			return nil, fmt.Errorf("list sources: %w", err)
		}
	}

	metrics.UpdateSourcesTotal(len(cached))
	for _, src := range cached {
		if filter.Matches(src) {
			listing.Sources = append(listing.Sources, enrich(src))
		}
	}
	return listing, nil
}

// Get returns one catalog entry. The catalog is not refetched.
func (s *Service) Get(ctx context.Context, id string) (*Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &entity.ValidationError{Field: "id", Message: "source id is required"}
	}
	src, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, ErrSourceNotFound
	}
	out := enrich(src)
	return &out, nil
}

// RefreshIfExpired refetches the catalog when it is empty or older than the TTL.
// It reports whether a fetch happened.
func (s *Service) RefreshIfExpired(ctx context.Context) (bool, error) {
	count, err := s.countCached(ctx)
	if err != nil {
		return false, err
	}
	fresh, err := s.isFresh(ctx, count)
	if err != nil || fresh {
		return false, err
	}
	if _, err := s.refresh(ctx); err != nil {
		return false, fmt.Errorf("refresh sources: %w", err)
	}
	return true, nil
}

func (s *Service) countCached(ctx context.Context) (int, error) {
	cached, err := s.Repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sources: %w", err)
	}
	return len(cached), nil
}

// isFresh reports whether a non-empty catalog is within the TTL.
func (s *Service) isFresh(ctx context.Context, count int) (bool, error) {
	if count == 0 {
		return false, nil
	}
	oldest, err := s.Repo.OldestCreatedAt(ctx)
	if err != nil {
		return false, fmt.Errorf("catalog age: %w", err)
	}
	if oldest == nil {
		return false, nil
	}
	return s.now().Sub(*oldest) <= s.ttl(), nil
}

func (s *Service) refresh(ctx context.Context) ([]*entity.NewsSource, error) {
	fetched, err := s.Remote.Sources(ctx, entity.SourceFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.Repo.ReplaceAll(ctx, fetched, now); err != nil {
		return nil, fmt.Errorf("store sources: %w", err)
	}
	for _, src := range fetched {
		src.CreatedAt = now
	}

	slog.Info("source catalog refreshed", slog.Int("sources", len(fetched)))
	event.Emit(ctx, s.Events, event.New(event.SourcesRefreshed, "", map[string]any{"sources": len(fetched)}))
	return fetched, nil
}

func enrich(src *entity.NewsSource) Source {
	domain, _ := urlutil.DomainName(src.URL)
	return Source{
		NewsSource: src,
		Domain:     domain,
		LogoURL:    urlutil.LogoURL(src.URL),
	}
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTTL
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
