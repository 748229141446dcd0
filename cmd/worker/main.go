package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"newsreader/internal/common/pagination"
	pgRepo "newsreader/internal/infra/adapter/persistence/postgres"
	"newsreader/internal/infra/db"
	"newsreader/internal/infra/events"
	"newsreader/internal/infra/newsapi"
	workerPkg "newsreader/internal/infra/worker"
	"newsreader/internal/observability/logging"
	"newsreader/internal/observability/tracing"
	"newsreader/pkg/config"

	newsUC "newsreader/internal/usecase/news"
	srcUC "newsreader/internal/usecase/source"
)

// waitForMigrations polls until the API has created the schema.
func waitForMigrations(ctx context.Context, logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM feed_remote_keys LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.ExecContext(ctx, probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 設定読み込み（fail-open）
	cfg := workerPkg.LoadConfigFromEnv(logger, config.NewMetrics("worker"))
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.String("default_country", cfg.DefaultCountry),
		slog.Duration("refresh_timeout", cfg.RefreshTimeout),
		slog.Int("health_port", cfg.HealthPort))

	shutdownTracing, err := tracing.Setup(ctx, tracing.ProviderConfigFromEnv("newsreader-worker"))
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	database, err := db.OpenFromEnv(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	waitForMigrations(ctx, logger, database)

	job, closeJob := setupRefreshJob(logger, database, cfg)
	defer closeJob()

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger, nil)
	go func() {
		if err := healthServer.Start(ctx); err != nil {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(ctx, logger, job, cfg, healthServer)
}

// setupRefreshJob wires the news and source use cases into the job.
// The returned function closes the event publisher.
func setupRefreshJob(logger *slog.Logger, database *sql.DB, cfg workerPkg.Config) (*workerPkg.RefreshJob, func()) {
	remote, err := newsapi.NewClient(newsapi.LoadConfigFromEnv())
	if err != nil {
		logger.Error("failed to configure news API client", slog.Any("error", err))
		os.Exit(1)
	}
	publisher, closePublisher := events.NewPublisher(events.LoadConfigFromEnv())

	newsSvc := &newsUC.Service{
		Repo:      pgRepo.NewNewsRepo(database),
		Favorites: pgRepo.NewFavoriteRepo(database),
		Remote:    remote,
		Events:    publisher,
		Paging:    pagination.LoadFromEnv(),
	}
	srcSvc := &srcUC.Service{
		Repo:   pgRepo.NewSourceRepo(database),
		Remote: remote,
		Events: publisher,
		TTL:    config.GetEnvDuration("SOURCE_CACHE_TTL", srcUC.DefaultTTL),
	}

	job := &workerPkg.RefreshJob{
		Feeds:          newsSvc,
		Sources:        srcSvc,
		DefaultCountry: cfg.DefaultCountry,
		Timeout:        cfg.RefreshTimeout,
		Metrics:        workerPkg.NewMetrics(),
		Logger:         logger,
	}
	return job, func() {
		if err := closePublisher(); err != nil {
			logger.Warn("failed to close event publisher", slog.Any("error", err))
		}
	}
}

// startCronWorker schedules the job and blocks until ctx is cancelled.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *workerPkg.RefreshJob, cfg workerPkg.Config, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		res := job.Run(ctx)
		healthServer.RecordRun(res, time.Now())
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// 実行中のジョブを待つ
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
