package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsreader/internal/common/pagination"
	pgRepo "newsreader/internal/infra/adapter/persistence/postgres"
	"newsreader/internal/infra/cache"
	"newsreader/internal/infra/db"
	"newsreader/internal/infra/events"
	"newsreader/internal/infra/fetcher"
	"newsreader/internal/infra/newsapi"
	"newsreader/internal/observability/logging"
	"newsreader/internal/observability/tracing"
	"newsreader/internal/usecase/event"
	"newsreader/pkg/config"

	contentUC "newsreader/internal/usecase/content"
	favUC "newsreader/internal/usecase/favorite"
	newsUC "newsreader/internal/usecase/news"
	srcUC "newsreader/internal/usecase/source"

	hhttp "newsreader/internal/handler/http"
	harticle "newsreader/internal/handler/http/article"
	hauth "newsreader/internal/handler/http/auth"
	hfav "newsreader/internal/handler/http/favorite"
	"newsreader/internal/handler/http/requestid"
	hsrc "newsreader/internal/handler/http/source"
)

// maxRequestBody covers a favorite payload with a long description and content.
const maxRequestBody = 1 << 20

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	version := config.GetEnvString("VERSION", "dev")

	shutdownTracing, err := tracing.Setup(ctx, tracing.ProviderConfigFromEnv("newsreader-api"))
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	components := setupServer(ctx, logger, database, version)
	defer components.Close()

	runServer(ctx, cancel, logger, components, version)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.OpenFromEnv(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler     http.Handler
	RateLimiter *hhttp.RateLimiter
	closers     []func() error
}

// Close releases the search cache and the event publisher.
func (c *ServerComponents) Close() {
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			slog.Warn("close failed", slog.Any("error", err))
		}
	}
}

// setupServer builds the use cases, registers routes and applies the middleware chain.
func setupServer(ctx context.Context, logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	components := &ServerComponents{}

	remote, err := newsapi.NewClient(newsapi.LoadConfigFromEnv())
	if err != nil {
		logger.Error("failed to configure news API client", slog.Any("error", err))
		os.Exit(1)
	}

	publisher, closePublisher := events.NewPublisher(events.LoadConfigFromEnv())
	components.closers = append(components.closers, closePublisher)
	if _, ok := publisher.(event.NopPublisher); ok {
		logger.Info("event publishing disabled")
	}

	// 任意依存: 落ちていても degraded 扱いでサービスは継続する
	optional := map[string]hhttp.Pinger{"news_api": remote}

	// Redis が落ちていても検索は上流に直接問い合わせて動作する
	var searchCache newsUC.SearchCache
	if cacheCfg := cache.LoadConfigFromEnv(); cacheCfg.URL != "" {
		sc, err := cache.Open(ctx, cacheCfg)
		if err != nil {
			logger.Warn("search cache unavailable, continuing without it", slog.Any("error", err))
		} else {
			searchCache = sc
			optional["search_cache"] = sc
			components.closers = append(components.closers, sc.Close)
			logger.Info("search cache enabled", slog.Duration("ttl", cacheCfg.TTL))
		}
	}

	paging := pagination.LoadFromEnv()
	newsRepo := pgRepo.NewNewsRepo(database)
	favRepo := pgRepo.NewFavoriteRepo(database)

	newsSvc := &newsUC.Service{
		Repo:      newsRepo,
		Favorites: favRepo,
		Remote:    remote,
		Cache:     searchCache,
		Events:    publisher,
		Paging:    paging,
		FeedTTL:   config.GetEnvDuration("FEED_CACHE_TTL", newsUC.DefaultFeedTTL),
	}
	favSvc := &favUC.Service{Repo: favRepo, Events: publisher}
	srcSvc := &srcUC.Service{
		Repo:   pgRepo.NewSourceRepo(database),
		Remote: remote,
		Events: publisher,
		TTL:    config.GetEnvDuration("SOURCE_CACHE_TTL", srcUC.DefaultTTL),
	}
	contentSvc := &contentUC.Service{
		Fetcher:      newContentFetcher(logger),
		Articles:     newsRepo,
		MaxTextRunes: config.GetEnvInt("CONTENT_MAX_TEXT_RUNES", 0),
	}

	guard := newGuard(logger)

	mux := http.NewServeMux()
	harticle.Register(mux, newsSvc, contentSvc, paging, guard)
	hsrc.Register(mux, srcSvc, newsSvc, paging)
	hfav.Register(mux, favSvc, guard)

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Optional: optional, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	rlCfg := hhttp.DefaultRateLimitConfig()
	rlCfg.RPS = config.GetEnvFloat("HTTP_RATE_LIMIT_RPS", rlCfg.RPS)
	rlCfg.Burst = config.GetEnvInt("HTTP_RATE_LIMIT_BURST", rlCfg.Burst)
	rlCfg.TrustProxy = config.GetEnvBool("HTTP_TRUST_PROXY", false)
	components.RateLimiter = hhttp.NewRateLimiter(rlCfg)
	logger.Info("rate limiting initialized",
		slog.Float64("rps", rlCfg.RPS),
		slog.Int("burst", rlCfg.Burst),
		slog.Bool("trust_proxy", rlCfg.TrustProxy))

	corsCfg, err := hhttp.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if len(corsCfg.AllowedOrigins) > 0 {
		logger.Info("CORS enabled", slog.Any("allowed_origins", corsCfg.AllowedOrigins))
	}

	// 1. CORS (preflight は早めに返す)
	// 2. Request ID
	// 3. Tracing
	// 4. Recovery
	// 5. Logging
	// 6. Rate limit
	// 7. Body size limit
	// 8. Security headers
	// 9. Metrics
	// 10. Authentication (route level, write routes only)
	components.Handler = hhttp.Chain(mux,
		hhttp.CORS(corsCfg, logger),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		components.RateLimiter.Limit,
		hhttp.LimitRequestBody(maxRequestBody),
		hhttp.SecurityHeaders,
		hhttp.MetricsMiddleware,
	)
	return components
}

// newContentFetcher returns nil when page downloads are disabled or misconfigured;
// the detail endpoint then serves cached headline text only.
func newContentFetcher(logger *slog.Logger) contentUC.Fetcher {
	cfg, warnings := fetcher.LoadConfigFromEnv()
	config.NewMetrics("content_fetch").Observe(warnings)
	for _, w := range warnings {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}

	if !cfg.Enabled {
		logger.Info("content fetching disabled")
		return nil
	}
	f, err := fetcher.NewReadabilityFetcher(cfg)
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
		return nil
	}
	logger.Info("content fetching enabled",
		slog.Duration("timeout", cfg.Timeout),
		slog.Int64("max_body_size", cfg.MaxBodySize),
		slog.Int("max_redirects", cfg.MaxRedirects))
	return f
}

// newGuard enables bearer auth on write routes when JWT_SECRET is set.
func newGuard(logger *slog.Logger) *hauth.Guard {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Warn("JWT_SECRET not set: write routes are unauthenticated")
		return nil
	}
	iss, err := hauth.NewIssuer(secret)
	if err != nil {
		logger.Error("invalid JWT_SECRET", slog.Any("error", err))
		os.Exit(1)
	}
	return &hauth.Guard{Issuer: iss, Logger: logger}
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, components *ServerComponents, version string) {
	go components.RateLimiter.Cleanup(ctx, time.Minute)

	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
