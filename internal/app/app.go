// Package app wires configuration, infrastructure, and domain components
// into the running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goslack "github.com/slack-go/slack"

	"github.com/mkallio/guildlog/internal/audit"
	"github.com/mkallio/guildlog/internal/config"
	"github.com/mkallio/guildlog/internal/httpserver"
	"github.com/mkallio/guildlog/internal/platform"
	"github.com/mkallio/guildlog/internal/telemetry"
	"github.com/mkallio/guildlog/internal/webhook"
	"github.com/mkallio/guildlog/pkg/dispatch"
	"github.com/mkallio/guildlog/pkg/logconfig"
	"github.com/mkallio/guildlog/pkg/notify"
	"github.com/mkallio/guildlog/pkg/registry"
	"github.com/mkallio/guildlog/pkg/router"
)

// Run is the main application entry point. It reads config, connects to
// infrastructure, and serves until the context is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting guildlog", "listen", cfg.ListenAddr())

	// Database
	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	// Redis
	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	// Metrics
	metricsReg := telemetry.NewMetricsRegistry()

	// Config store behind its cache.
	store := logconfig.NewStore(db)
	cache := logconfig.NewCache(store, rdb, logger, logconfig.CacheMetrics{
		Hits:   telemetry.ConfigCacheHitsTotal,
		Misses: telemetry.ConfigCacheMissesTotal,
	})

	// Delivery sink and channel registry. Without a Slack token the sender
	// is a noop and every non-zero channel resolves, so the pipeline still
	// runs end to end locally.
	sender := notify.NewSlackSender(cfg.SlackBotToken, logger)
	var channels registry.ChannelRegistry
	if cfg.SlackBotToken != "" {
		channels = registry.NewSlackRegistry(goslack.New(cfg.SlackBotToken))
	} else {
		logger.Info("slack delivery disabled (SLACK_BOT_TOKEN not set)")
		channels = registry.AllowAll{}
	}

	eventRouter := router.New(cache, channels, logger)
	dispatcher := dispatch.New(eventRouter, sender, logger, dispatch.Metrics{
		Received:         telemetry.EventsReceivedTotal,
		Outcomes:         telemetry.EventOutcomesTotal,
		DeliveryDuration: telemetry.DeliveryDuration,
	})

	// Audit log writer (async, buffered).
	auditWriter := audit.NewWriter(db, logger)
	auditWriter.Start(ctx)
	defer auditWriter.Close()

	srv := httpserver.NewServer(cfg, logger, db, rdb, metricsReg)

	configHandler := logconfig.NewHandler(cache, logger, auditWriter)
	srv.AdminRouter.Mount("/guilds", configHandler.Routes())

	webhookHandler := webhook.NewHandler(dispatcher, logger)
	srv.WebhookRouter.Mount("/", webhookHandler.Routes())

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
