package repository

import (
	"context"
	"time"

	"newsreader/internal/domain/entity"
)

type FavoriteRepository interface {
	// ListFavorites returns favorites, most recently favorited first.
	ListFavorites(ctx context.Context) ([]*entity.NewsArticle, error)
	// AddFavorite inserts or flags the article identified by its URL.
	AddFavorite(ctx context.Context, article *entity.NewsArticle, at time.Time) error
	// RemoveFavorite reports false when url was not a favorite.
	RemoveFavorite(ctx context.Context, url string) (bool, error)
	IsFavorite(ctx context.Context, url string) (bool, error)
	// FavoriteURLs returns the subset of urls that are favorites.
	FavoriteURLs(ctx context.Context, urls []string) (map[string]bool, error)
	RemoveAllFavorites(ctx context.Context) (int64, error)
}
