package repository

import (
	"context"
	"time"

	"newsreader/internal/domain/entity"
)

type SourceRepository interface {
	List(ctx context.Context) ([]*entity.NewsSource, error)
	// Get returns (nil, nil) when id is unknown.
	Get(ctx context.Context, id string) (*entity.NewsSource, error)
	// ReplaceAll swaps the whole catalog in one transaction, stamping every row with createdAt.
	ReplaceAll(ctx context.Context, sources []*entity.NewsSource, createdAt time.Time) error
	// OldestCreatedAt returns nil when the catalog is empty.
	OldestCreatedAt(ctx context.Context) (*time.Time, error)
}
