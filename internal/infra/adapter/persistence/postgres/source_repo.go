package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsreader/internal/domain/entity"
	"newsreader/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, name, description, url, category, language, country, created_at`

func scanSource(s rowScanner) (*entity.NewsSource, error) {
	var src entity.NewsSource
	if err := s.Scan(
		&src.ID, &src.Name, &src.Description, &src.URL,
		&src.Category, &src.Language, &src.Country, &src.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &src, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.NewsSource, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM news_sources
ORDER BY name ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// NewsAPI の全ソースは百数十件程度
	sources := make([]*entity.NewsSource, 0, 128)
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) Get(ctx context.Context, id string) (*entity.NewsSource, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM news_sources
WHERE id = $1
LIMIT 1`
	src, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return src, nil
}

func (repo *SourceRepo) ReplaceAll(ctx context.Context, sources []*entity.NewsSource, createdAt time.Time) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceAll: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM news_sources`); err != nil {
		return fmt.Errorf("ReplaceAll: delete: %w", err)
	}

	const insert = `
INSERT INTO news_sources (id, name, description, url, category, language, country, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`
	for _, s := range sources {
		if s.ID == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, insert,
			s.ID, s.Name, s.Description, s.URL, s.Category, s.Language, s.Country, createdAt,
		); err != nil {
			return fmt.Errorf("ReplaceAll: insert %s: %w", s.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ReplaceAll: Commit: %w", err)
	}
	return nil
}

func (repo *SourceRepo) OldestCreatedAt(ctx context.Context) (*time.Time, error) {
	const query = `SELECT MIN(created_at) FROM news_sources`
	var oldest sql.NullTime
	if err := repo.db.QueryRowContext(ctx, query).Scan(&oldest); err != nil {
		return nil, fmt.Errorf("OldestCreatedAt: %w", err)
	}
	if !oldest.Valid {
		return nil, nil
	}
	t := oldest.Time
	return &t, nil
}
