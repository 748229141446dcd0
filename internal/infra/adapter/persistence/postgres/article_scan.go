package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"newsreader/internal/domain/entity"
)

const articleColumns = `id, author, content, description, published_at, source_id, source_name,
       title, url, url_to_image, is_favorite, favorited_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (*entity.NewsArticle, error) {
	var a entity.NewsArticle
	var favoritedAt sql.NullTime
	if err := s.Scan(
		&a.ID, &a.Author, &a.Content, &a.Description, &a.PublishedAt,
		&a.Source.ID, &a.Source.Name, &a.Title, &a.URL, &a.URLToImage,
		&a.IsFavorite, &favoritedAt,
	); err != nil {
		return nil, err
	}
	if favoritedAt.Valid {
		t := favoritedAt.Time
		a.FavoritedAt = &t
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows, capacity int) ([]*entity.NewsArticle, error) {
	articles := make([]*entity.NewsArticle, 0, capacity)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// placeholders returns "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}
