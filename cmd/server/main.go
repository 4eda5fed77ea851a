package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"

	"github.com/yousefm/sallasync/internal/client/salla"
	"github.com/yousefm/sallasync/internal/config"
	"github.com/yousefm/sallasync/internal/migrations"
	pgmigrations "github.com/yousefm/sallasync/internal/migrations/postgres"
	xredis "github.com/yousefm/sallasync/internal/redis"
	"github.com/yousefm/sallasync/internal/server/handler"
	servermw "github.com/yousefm/sallasync/internal/server/middleware"
	"github.com/yousefm/sallasync/internal/service/webhook"
	"github.com/yousefm/sallasync/internal/storage"
	"github.com/yousefm/sallasync/internal/version"
	"github.com/yousefm/sallasync/internal/xhttp/middleware"
	"github.com/yousefm/sallasync/internal/xslog"
)

const (
	keyPort   = "port"
	keyDriver = "driver"
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize customer store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close store", xslog.Error(err))
		}
	}()

	backend, err := initBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close backend", xslog.Error(err))
		}
	}()

	var processorOpts []webhook.ProcessorOption
	if cfg.Salla.EnrichOrders && cfg.Salla.APIToken != "" {
		client := salla.New(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Salla.APIToken}),
			salla.WithBaseURL(cfg.Salla.APIBaseURL),
			salla.WithLogger(logger),
			salla.WithTimeout(cfg.Salla.EnrichTimeout),
		)
		processorOpts = append(processorOpts, webhook.WithOrderEnrichment(client.Orders, cfg.Salla.EnrichTimeout))
		logger.InfoContext(ctx, "order enrichment enabled")
	}

	webhookService := webhook.NewProcessor(
		cfg.Salla.WebhookSecret,
		cfg.Salla.DefaultCurrency,
		store,
		processorOpts...,
	)
	webhookHandler := handler.NewWebhook(webhookService)

	mux := http.NewServeMux()

	webhookMux := http.NewServeMux()
	webhookMux.HandleFunc("POST /webhooks/salla", webhookHandler.HandleWebhook)
	mux.Handle("/webhooks/", middleware.Chain(webhookMux,
		servermw.RateLimitWithBackend(backend),
	))
	mux.HandleFunc("GET /health", handler.HandleHealth)

	wrapped := middleware.Chain(mux,
		middleware.Recovery,
		middleware.Logging,
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.SecurityHeaders,
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.InfoContext(ctx, "starting server",
			slog.String("version", version.Get()),
			slog.String(keyPort, cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "server error", xslog.Error(err))
		}
	}()

	<-done
	logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

func initStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.CustomerStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		logger.InfoContext(ctx, "initializing customer store", slog.String(keyDriver, "postgres"))

		pool, err := pgxpool.New(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := pgmigrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return storage.NewPostgresStore(pool, cfg.Salla.DefaultCurrency), nil

	case "sqlite":
		logger.InfoContext(ctx, "initializing customer store", slog.String(keyDriver, "sqlite"))

		db, err := sql.Open("sqlite3", cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return storage.NewSQLiteStore(db, cfg.Salla.DefaultCurrency), nil

	case "memory":
		logger.InfoContext(ctx, "initializing customer store", slog.String(keyDriver, "memory"))
		return storage.NewMemoryStore(cfg.Salla.DefaultCurrency), nil

	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}
}

func initBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Backend, error) {
	if cfg.Redis.URL == "" {
		logger.InfoContext(ctx, "initializing in-memory rate limit backend")
		return storage.NewMemoryBackend(cfg.RateLimit.Limit, cfg.RateLimit.Burst), nil
	}

	logger.InfoContext(ctx, "initializing Redis rate limit backend")
	client, err := xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
	if err != nil {
		return nil, err
	}
	return storage.NewRedisBackend(storage.RedisConfig{Client: client}, int(cfg.RateLimit.Limit))
}
