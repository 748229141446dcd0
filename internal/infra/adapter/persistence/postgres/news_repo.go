package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"newsreader/internal/domain/entity"
	"newsreader/internal/repository"
)

type NewsRepo struct{ db *sql.DB }

func NewNewsRepo(db *sql.DB) repository.NewsRepository {
	return &NewsRepo{db: db}
}

func (repo *NewsRepo) ListFeed(ctx context.Context, offset, limit int) ([]*entity.NewsArticle, error) {
	const query = `
SELECT ` + articleColumns + `
FROM news_articles
WHERE feed_seq IS NOT NULL
ORDER BY feed_seq ASC
LIMIT $1 OFFSET $2`
	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListFeed: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles, err := scanArticles(rows, limit)
	if err != nil {
		return nil, fmt.Errorf("ListFeed: %w", err)
	}
	return articles, nil
}

func (repo *NewsRepo) CountFeed(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news_articles WHERE feed_seq IS NOT NULL`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountFeed: %w", err)
	}
	return count, nil
}

func (repo *NewsRepo) GetByURL(ctx context.Context, url string) (*entity.NewsArticle, error) {
	const query = `
SELECT ` + articleColumns + `
FROM news_articles
WHERE url = $1
LIMIT 1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return a, nil
}

// upsertFeedArticle keeps favorite flags and an existing feed position untouched.
const upsertFeedArticle = `
INSERT INTO news_articles
       (author, content, description, published_at, source_id, source_name,
        title, url, url_to_image, feed_seq)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, nextval('news_feed_seq'))
ON CONFLICT (url) DO UPDATE SET
       author       = EXCLUDED.author,
       content      = EXCLUDED.content,
       description  = EXCLUDED.description,
       published_at = EXCLUDED.published_at,
       source_id    = EXCLUDED.source_id,
       source_name  = EXCLUDED.source_name,
       title        = EXCLUDED.title,
       url_to_image = EXCLUDED.url_to_image,
       feed_seq     = COALESCE(news_articles.feed_seq, EXCLUDED.feed_seq)`

const saveFeedKey = `
INSERT INTO feed_remote_keys (id, country, last_page, end_reached, refreshed_at)
VALUES (1, $1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
       country      = EXCLUDED.country,
       last_page    = EXCLUDED.last_page,
       end_reached  = EXCLUDED.end_reached,
       refreshed_at = EXCLUDED.refreshed_at`

// feedLockID keys the transaction-scoped advisory lock every feed writer takes.
const feedLockID = 0x6e657773 // "news"

func lockFeed(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, feedLockID); err != nil {
		return fmt.Errorf("lock feed: %w", err)
	}
	return nil
}

func (repo *NewsRepo) StoreFeedPage(ctx context.Context, page repository.FeedPage) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("StoreFeedPage: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockFeed(ctx, tx); err != nil {
		return fmt.Errorf("StoreFeedPage: %w", err)
	}
	if page.Expect != nil {
		if err = expectFeedKey(ctx, tx, *page.Expect); err != nil {
			return fmt.Errorf("StoreFeedPage: %w", err)
		}
	}

	if page.Replace {
		if err = resetFeed(ctx, tx); err != nil {
			return fmt.Errorf("StoreFeedPage: %w", err)
		}
	}

	for _, a := range page.Articles {
		if _, err = tx.ExecContext(ctx, upsertFeedArticle,
			a.Author, a.Content, a.Description, a.PublishedAt,
			a.Source.ID, a.Source.Name, a.Title, a.URL, a.URLToImage,
		); err != nil {
			return fmt.Errorf("StoreFeedPage: upsert %s: %w", a.URL, err)
		}
	}

	k := page.Key
	if _, err = tx.ExecContext(ctx, saveFeedKey, k.Country, k.LastPage, k.EndReached, k.RefreshedAt); err != nil {
		return fmt.Errorf("StoreFeedPage: save key: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("StoreFeedPage: Commit: %w", err)
	}
	return nil
}

// expectFeedKey fails with repository.ErrFeedKeyConflict when another writer
// replaced or extended the feed since want was read.
func expectFeedKey(ctx context.Context, tx *sql.Tx, want entity.FeedKey) error {
	var got entity.FeedKey
	err := tx.QueryRowContext(ctx, selectFeedKey).Scan(&got.Country, &got.LastPage, &got.EndReached, &got.RefreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrFeedKeyConflict
	}
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if !got.Same(want) {
		return repository.ErrFeedKeyConflict
	}
	return nil
}

// resetFeed drops cached articles and detaches favorites from the feed.
func resetFeed(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM news_articles WHERE is_favorite = FALSE`); err != nil {
		return fmt.Errorf("delete cached: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE news_articles SET feed_seq = NULL WHERE feed_seq IS NOT NULL`); err != nil {
		return fmt.Errorf("detach favorites: %w", err)
	}
	return nil
}

const selectFeedKey = `
SELECT country, last_page, end_reached, refreshed_at
FROM feed_remote_keys
WHERE id = 1`

func (repo *NewsRepo) FeedKey(ctx context.Context) (*entity.FeedKey, error) {
	var k entity.FeedKey
	err := repo.db.QueryRowContext(ctx, selectFeedKey).Scan(&k.Country, &k.LastPage, &k.EndReached, &k.RefreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FeedKey: %w", err)
	}
	return &k, nil
}

func (repo *NewsRepo) ClearCache(ctx context.Context) (n int64, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ClearCache: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockFeed(ctx, tx); err != nil {
		return 0, fmt.Errorf("ClearCache: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM news_articles WHERE is_favorite = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("ClearCache: delete cached: %w", err)
	}
	n, _ = res.RowsAffected()

	if _, err = tx.ExecContext(ctx, `UPDATE news_articles SET feed_seq = NULL WHERE feed_seq IS NOT NULL`); err != nil {
		return 0, fmt.Errorf("ClearCache: detach favorites: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM feed_remote_keys`); err != nil {
		return 0, fmt.Errorf("ClearCache: delete key: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("ClearCache: Commit: %w", err)
	}
	return n, nil
}

func (repo *NewsRepo) DeleteAll(ctx context.Context) (n int64, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockFeed(ctx, tx); err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM news_articles`)
	if err != nil {
		return 0, fmt.Errorf("DeleteAll: %w", err)
	}
	n, _ = res.RowsAffected()

	if _, err = tx.ExecContext(ctx, `DELETE FROM feed_remote_keys`); err != nil {
		return 0, fmt.Errorf("DeleteAll: delete key: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("DeleteAll: Commit: %w", err)
	}
	return n, nil
}
