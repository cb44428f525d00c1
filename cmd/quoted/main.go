// Command quoted runs the quote expiration service: an HTTP API plus a
// background scheduler that expires stale quotes and sends expiration
// reminder emails.
//
// Boot order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure zerolog (level, optional pretty console output)
//  3. Set up OpenTelemetry tracing (no-op when disabled)
//  4. Open SQLite and migrate the schema
//  5. Start the expiration scheduler goroutine
//  6. Serve the HTTP API until SIGINT/SIGTERM, then drain gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oc-ilias/quotegen-backend/internal/config"
	httpapi "github.com/oc-ilias/quotegen-backend/internal/http"
	"github.com/oc-ilias/quotegen-backend/internal/notify"
	"github.com/oc-ilias/quotegen-backend/internal/observability"
	"github.com/oc-ilias/quotegen-backend/internal/repo"
	"github.com/oc-ilias/quotegen-backend/internal/scheduler"
	"github.com/oc-ilias/quotegen-backend/internal/services"
	"github.com/oc-ilias/quotegen-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Best effort: local development convenience only.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting quoted")

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	notifier := notify.NewResendNotifier(notify.Config{
		Enabled: cfg.Email.Enabled,
		APIKey:  cfg.Email.ResendAPIKey,
		ReplyTo: sysutil.FirstNonEmpty(cfg.Email.ReplyTo, cfg.Reminders.FromEmail),
	})
	if !notifier.IsEnabled() && cfg.Reminders.Enabled {
		log.Warn().Msg("reminders enabled but email provider disabled; reminder sends will fail")
	}

	svc := services.NewExpirationService(db, repo.GormQuoteStore{}, notifier)

	// Root context cancelled on SIGINT/SIGTERM.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background expiration scheduler.
	sched := scheduler.New(svc, httpapi.ReminderConfig(cfg), scheduler.Options{
		Interval:   cfg.ExpirationInterval,
		RunOnStart: true,
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(rootCtx)
	}()

	// HTTP API.
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, notifier, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	// Scheduler stops because rootCtx is cancelled.
	wg.Wait()

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}
