package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"newsreader/internal/usecase/news"
)

// Job statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

const (
	taskHeadlines = "headlines"
	taskSources   = "sources"
)

// FeedRefresher is the part of news.Service the job drives.
type FeedRefresher interface {
	CachedCountry(ctx context.Context, fallback string) (string, error)
	Refresh(ctx context.Context, country string) (news.MediatorResult, error)
}

// CatalogRefresher is the part of source.Service the job drives.
type CatalogRefresher interface {
	RefreshIfExpired(ctx context.Context) (bool, error)
}

// RefreshJob refreshes the cached headline feed and, when expired, the
// source catalog. Both tasks run concurrently; one failing does not cancel
// the other.
type RefreshJob struct {
	Feeds          FeedRefresher
	Sources        CatalogRefresher
	DefaultCountry string
	Timeout        time.Duration
	Metrics        *Metrics
	Logger         *slog.Logger
}

// RunResult summarises one run.
type RunResult struct {
	Status          string
	Country         string
	Stored          int
	SourceRefreshed bool
	Err             error
}

// Run executes the job once. It never panics on a nil Sources or Metrics.
func (j *RefreshJob) Run(ctx context.Context) RunResult {
	start := time.Now()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	var res RunResult
	var feedErr, srcErr error
	var g errgroup.Group

	g.Go(func() error {
		res.Country, res.Stored, feedErr = j.refreshFeed(ctx)
		return nil
	})
	if j.Sources != nil {
		g.Go(func() error {
			res.SourceRefreshed, srcErr = j.refreshSources(ctx)
			return nil
		})
	}
	_ = g.Wait()

	res.Err = errors.Join(feedErr, srcErr)
	switch {
	case feedErr != nil && (srcErr != nil || j.Sources == nil):
		res.Status = StatusFailure
	case res.Err != nil:
		res.Status = StatusPartial
	default:
		res.Status = StatusSuccess
	}

	if j.Metrics != nil {
		j.Metrics.RecordJob(res.Status, time.Since(start))
		j.Metrics.ArticlesRefreshed.Add(float64(res.Stored))
	}
	j.logger().Info("refresh job finished",
		slog.String("status", res.Status),
		slog.String("country", res.Country),
		slog.Int("stored", res.Stored),
		slog.Bool("sources_refreshed", res.SourceRefreshed),
		slog.Duration("duration", time.Since(start)),
		slog.Any("error", res.Err))
	return res
}

func (j *RefreshJob) refreshFeed(ctx context.Context) (string, int, error) {
	country, err := j.Feeds.CachedCountry(ctx, j.DefaultCountry)
	if err != nil {
		j.recordTask(taskHeadlines, StatusFailure)
		return "", 0, fmt.Errorf("headlines: %w", err)
	}
	out, err := j.Feeds.Refresh(ctx, country)
	if err != nil {
		j.recordTask(taskHeadlines, StatusFailure)
		return country, 0, fmt.Errorf("headlines: %w", err)
	}
	j.recordTask(taskHeadlines, StatusSuccess)
	return country, out.Stored, nil
}

func (j *RefreshJob) refreshSources(ctx context.Context) (bool, error) {
	refreshed, err := j.Sources.RefreshIfExpired(ctx)
	switch {
	case err != nil:
		j.recordTask(taskSources, StatusFailure)
		return false, fmt.Errorf("sources: %w", err)
	case refreshed:
		j.recordTask(taskSources, StatusSuccess)
	default:
		j.recordTask(taskSources, "skipped")
	}
	return refreshed, nil
}

func (j *RefreshJob) recordTask(task, result string) {
	if j.Metrics != nil {
		j.Metrics.RecordTask(task, result)
	}
}

func (j *RefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
