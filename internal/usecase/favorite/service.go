package favorite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/internal/observability/metrics"
	"newsreader/internal/repository"
	"newsreader/internal/usecase/event"
)

// Service manages favorites. Events is optional.
type Service struct {
	Repo   repository.FavoriteRepository
	Events event.Publisher
	Now    func() time.Time
}

// List returns favorites, most recently saved first.
func (s *Service) List(ctx context.Context) ([]*entity.NewsArticle, error) {
	favs, err := s.Repo.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	metrics.UpdateFavoritesTotal(len(favs))
	return favs, nil
}

// Add saves article. Saving an existing favorite refreshes its content and timestamp.
func (s *Service) Add(ctx context.Context, article *entity.NewsArticle) error {
	if article == nil {
		return &entity.ValidationError{Field: "article", Message: "article is required"}
	}
	article.URL = strings.TrimSpace(article.URL)
	article.Title = strings.TrimSpace(article.Title)
	if err := article.Validate(); err != nil {
		return err
	}

	at := s.now().UTC()
	if err := s.Repo.AddFavorite(ctx, article, at); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	article.IsFavorite = true
	article.FavoritedAt = &at

	event.Emit(ctx, s.Events, event.New(event.FavoriteAdded, article.URL, map[string]any{
		"title":  article.Title,
		"source": article.Source.Name,
	}))
	return nil
}

// Remove deletes url from the favorites. It returns ErrNotFavorite when url was not saved.
func (s *Service) Remove(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if err := entity.ValidateArticleURL(url); err != nil {
		return err
	}

	removed, err := s.Repo.RemoveFavorite(ctx, url)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if !removed {
		return ErrNotFavorite
	}

	event.Emit(ctx, s.Events, event.New(event.FavoriteRemoved, url, nil))
	return nil
}

func (s *Service) IsFavorite(ctx context.Context, url string) (bool, error) {
	url = strings.TrimSpace(url)
	if err := entity.ValidateArticleURL(url); err != nil {
		return false, err
	}
	ok, err := s.Repo.IsFavorite(ctx, url)
	if err != nil {
		return false, fmt.Errorf("is favorite: %w", err)
	}
	return ok, nil
}

// Toggle saves article when it is not a favorite and removes it otherwise.
// It returns the new state.
func (s *Service) Toggle(ctx context.Context, article *entity.NewsArticle) (bool, error) {
	if article == nil {
		return false, &entity.ValidationError{Field: "article", Message: "article is required"}
	}
	fav, err := s.IsFavorite(ctx, article.URL)
	if err != nil {
		return false, err
	}
	if fav {
		if err := s.Remove(ctx, article.URL); err != nil {
			return false, err
		}
		article.IsFavorite = false
		article.FavoritedAt = nil
		return false, nil
	}
	if err := s.Add(ctx, article); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAll clears every favorite. Cached headlines are not affected.
func (s *Service) RemoveAll(ctx context.Context) (int64, error) {
	n, err := s.Repo.RemoveAllFavorites(ctx)
	if err != nil {
		return 0, fmt.Errorf("remove all favorites: %w", err)
	}
	metrics.UpdateFavoritesTotal(0)

	event.Emit(ctx, s.Events, event.New(event.FavoritesCleared, "", map[string]any{"removed": n}))
	return n, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
