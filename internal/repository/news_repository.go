package repository

import (
	"context"
	"errors"

	"newsreader/internal/domain/entity"
)

// FeedPage is one upstream page of headlines to be merged into the cache.
// When Replace is set, the cached feed is dropped before the page is stored.
// Articles, the feed reset and Key are written in a single transaction.
type FeedPage struct {
	Articles []*entity.NewsArticle
	Replace  bool
	Key      entity.FeedKey
	// Expect makes the write conditional on the stored key still equalling
	// *Expect. An append sets it to the key it read before calling upstream.
	Expect *entity.FeedKey
}

// ErrFeedKeyConflict is returned by StoreFeedPage when FeedPage.Expect no
// longer matches the stored key; nothing is written.
var ErrFeedKeyConflict = errors.New("feed key changed concurrently")

type NewsRepository interface {
	// ListFeed returns cached feed articles in the order they were received.
	ListFeed(ctx context.Context, offset, limit int) ([]*entity.NewsArticle, error)
	CountFeed(ctx context.Context) (int64, error)
	// GetByURL returns (nil, nil) when no row exists.
	GetByURL(ctx context.Context, url string) (*entity.NewsArticle, error)
	// StoreFeedPage upserts articles by URL without touching favorite flags.
	StoreFeedPage(ctx context.Context, page FeedPage) error
	// FeedKey returns (nil, nil) before the first refresh.
	FeedKey(ctx context.Context) (*entity.FeedKey, error)
	// ClearCache drops every non-favorite article and the feed key.
	// Favorites survive but are detached from the feed.
	ClearCache(ctx context.Context) (int64, error)
	// DeleteAll removes every article, favorites included, and the feed key.
	DeleteAll(ctx context.Context) (int64, error)
}
