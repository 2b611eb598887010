package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairdesk-io/fairdesk/internal/audit"
	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/authz"
	"github.com/fairdesk-io/fairdesk/internal/complaint"
	"github.com/fairdesk-io/fairdesk/internal/directory"
	"github.com/fairdesk-io/fairdesk/internal/platform/config"
	"github.com/fairdesk-io/fairdesk/internal/platform/database"
	"github.com/fairdesk-io/fairdesk/internal/platform/server"
	"github.com/fairdesk-io/fairdesk/internal/platform/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	telemetry.SetDefault(logger)

	slog.Info("fairdesk starting", "port", cfg.Server.Port)

	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	migrationsURL := fmt.Sprintf("file://%s", cfg.Database.MigrationsPath)
	if err := database.RunMigrations(cfg.Database.URL, migrationsURL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations complete")

	// Profiles and principal resolution
	profileStore := directory.NewStore(pool)
	resolver := authz.NewResolver(profileStore)

	// Auth
	tokenSvc := auth.NewTokenService(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.ExpiryHours)
	authHandler := auth.NewHandler(tokenSvc, resolver)

	// Audit
	var auditLogger audit.Logger = audit.NopLogger{}
	if cfg.Audit.Enabled {
		auditLogger = audit.NewAsyncLogger(audit.NewStore(pool), audit.LoggerConfig{
			BufferSize:    cfg.Audit.BufferSize,
			BatchSize:     cfg.Audit.BatchSize,
			FlushInterval: time.Duration(cfg.Audit.FlushIntervalMS) * time.Millisecond,
		})
		defer auditLogger.Close()
		slog.Info("audit logger started")
	}

	// Complaints
	complaintStore := complaint.NewStore(pool)
	feed := complaint.NewFeed()
	complaintHandler := complaint.NewHandler(complaintStore, profileStore, auditLogger, feed)
	watchHandler := complaint.NewWatchHandler(feed, complaintStore, tokenSvc)

	directoryHandler := directory.NewHandler(profileStore)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, server.Dependencies{
		Pool:               pool,
		Auth:               tokenSvc,
		AuthHandler:        authHandler,
		ComplaintHandler:   complaintHandler,
		DirectoryHandler:   directoryHandler,
		WatchHandler:       watchHandler,
		DevMode:            cfg.Auth.DevMode,
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(runCtx)
}
