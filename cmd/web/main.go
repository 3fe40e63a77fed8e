package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/config"
	"spirits-dashboard/internal/datasource"
	"spirits-dashboard/internal/middleware"
	"spirits-dashboard/internal/observability"
	"spirits-dashboard/internal/server"
	"spirits-dashboard/internal/services"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// openSource builds the configured loader and returns the hooks that release
// whatever it opened.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Loader, []server.ShutdownHook, error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		src, err := datasource.OpenPostgres(ctx, cfg.Data.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, []server.ShutdownHook{{Name: "postgres", Fn: func(context.Context) error { return src.Close() }}}, nil

	default:
		cache, hooks := openCache(ctx, cfg.Cache, logger)
		return datasource.NewFileSource(cfg.Data.SalesFile, cfg.Data.InventoryFile, cache, logger), hooks, nil
	}
}

// openCache never fails: the cache only saves parse time, so an unreachable
// Redis degrades to no caching.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (datasource.TableCache, []server.ShutdownHook) {
	switch cfg.Backend {
	case config.CacheRedis:
		cache, err := datasource.NewRedisCache(ctx, cfg)
		if err != nil {
			logger.Warn("redis table cache unavailable, continuing without cache", "error", err)
			return datasource.NoopCache{}, nil
		}
		logger.Info("using redis table cache")
		return cache, []server.ShutdownHook{{Name: "redis", Fn: func(context.Context) error { return cache.Close() }}}
	case config.CacheFile:
		logger.Info("using file table cache", "dir", cfg.Dir)
		return datasource.NewGobCache(cfg.Dir), nil
	default:
		return datasource.NoopCache{}, nil
	}
}

// loadAnalytics runs the initial load. On failure the hooks run immediately,
// since no server will be around to run them at shutdown.
func loadAnalytics(ctx context.Context, cfg *config.Config, logger *slog.Logger, loader services.Loader, hooks []server.ShutdownHook) (*services.Analytics, error) {
	analytics := services.NewAnalytics(logger, services.AlertPolicy{ExpiryWindowDays: cfg.Alerts.ExpiryWindowDays})
	if err := analytics.Load(ctx, loader, time.Now()); err != nil {
		if closeErr := closeHooks(context.WithoutCancel(ctx), hooks, logger); closeErr != nil {
			err = fmt.Errorf("%w (cleanup: %v)", err, closeErr)
		}
		return nil, err
	}
	return analytics, nil
}

func closeHooks(ctx context.Context, hooks []server.ShutdownHook, logger *slog.Logger) error {
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].Fn(ctx); err != nil {
			logger.Error("close failed", "resource", hooks[i].Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].Name, err))
		}
	}
	return stderrors.Join(errs...)
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, logger, time.Now)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Server.LoadTimeout)
	defer cancel()

	loader, hooks, err := openSource(loadCtx, cfg, logger)
	if err != nil {
		return err
	}

	analytics, err := loadAnalytics(loadCtx, cfg, logger, loader, hooks)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	for _, hook := range hooks {
		gracefulServer.RegisterShutdownHook(hook.Name, hook.Fn)
	}

	return gracefulServer.ListenAndServe(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"data_source", cfg.Data.Source,
		"cache_backend", cfg.Cache.Backend,
		"addr", cfg.Address(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
