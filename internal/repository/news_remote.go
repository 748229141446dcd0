package repository

import (
	"context"

	"newsreader/internal/domain/entity"
)

// NewsRemote is the upstream news API.
//
// Failures are classified: entity.ErrNetwork for transport problems,
// *entity.HTTPStatusError for rejected requests, entity.ErrNoData for empty
// or malformed answers.
type NewsRemote interface {
	TopHeadlines(ctx context.Context, q entity.HeadlinesQuery) (*entity.NewsResponse, error)
	Everything(ctx context.Context, q entity.EverythingQuery) (*entity.NewsResponse, error)
	Sources(ctx context.Context, f entity.SourceFilter) ([]*entity.NewsSource, error)
}
