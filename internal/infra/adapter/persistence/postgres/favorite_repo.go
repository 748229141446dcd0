package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/internal/repository"
)

type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) repository.FavoriteRepository {
	return &FavoriteRepo{db: db}
}

func (repo *FavoriteRepo) ListFavorites(ctx context.Context) ([]*entity.NewsArticle, error) {
	const query = `
SELECT ` + articleColumns + `
FROM news_articles
WHERE is_favorite = TRUE
ORDER BY favorited_at DESC NULLS LAST, id DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListFavorites: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles, err := scanArticles(rows, 20)
	if err != nil {
		return nil, fmt.Errorf("ListFavorites: %w", err)
	}
	return articles, nil
}

func (repo *FavoriteRepo) AddFavorite(ctx context.Context, a *entity.NewsArticle, at time.Time) error {
	const query = `
INSERT INTO news_articles
       (author, content, description, published_at, source_id, source_name,
        title, url, url_to_image, is_favorite, favorited_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
ON CONFLICT (url) DO UPDATE SET
       author       = EXCLUDED.author,
       content      = EXCLUDED.content,
       description  = EXCLUDED.description,
       published_at = EXCLUDED.published_at,
       source_id    = EXCLUDED.source_id,
       source_name  = EXCLUDED.source_name,
       title        = EXCLUDED.title,
       url_to_image = EXCLUDED.url_to_image,
       is_favorite  = TRUE,
       favorited_at = EXCLUDED.favorited_at`
	_, err := repo.db.ExecContext(ctx, query,
		a.Author, a.Content, a.Description, a.PublishedAt,
		a.Source.ID, a.Source.Name, a.Title, a.URL, a.URLToImage, at,
	)
	if err != nil {
		return fmt.Errorf("AddFavorite: %w", err)
	}
	return nil
}

// RemoveFavorite unflags url. The row itself is deleted unless the headline feed still lists it.
func (repo *FavoriteRepo) RemoveFavorite(ctx context.Context, url string) (removed bool, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("RemoveFavorite: BeginTx: %w", err)
	}
	defer func() {
		if err != nil || !removed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE news_articles SET is_favorite = FALSE, favorited_at = NULL
WHERE url = $1 AND is_favorite = TRUE`, url)
	if err != nil {
		return false, fmt.Errorf("RemoveFavorite: unflag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM news_articles WHERE url = $1 AND feed_seq IS NULL`, url); err != nil {
		return false, fmt.Errorf("RemoveFavorite: delete: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("RemoveFavorite: Commit: %w", err)
	}
	return true, nil
}

func (repo *FavoriteRepo) IsFavorite(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM news_articles WHERE url = $1 AND is_favorite = TRUE)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("IsFavorite: %w", err)
	}
	return exists, nil
}

// FavoriteURLs checks many URLs with one query.
func (repo *FavoriteRepo) FavoriteURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	query := `SELECT url FROM news_articles WHERE is_favorite = TRUE AND url IN (` + placeholders(1, len(urls)) + `)`
	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FavoriteURLs: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("FavoriteURLs: Scan: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FavoriteURLs: %w", err)
	}
	return result, nil
}

func (repo *FavoriteRepo) RemoveAllFavorites(ctx context.Context) (n int64, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("RemoveAllFavorites: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE news_articles SET is_favorite = FALSE, favorited_at = NULL
WHERE is_favorite = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("RemoveAllFavorites: unflag: %w", err)
	}
	n, _ = res.RowsAffected()

	if _, err = tx.ExecContext(ctx, `DELETE FROM news_articles WHERE feed_seq IS NULL AND is_favorite = FALSE`); err != nil {
		return 0, fmt.Errorf("RemoveAllFavorites: delete: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("RemoveAllFavorites: Commit: %w", err)
	}
	return n, nil
}
