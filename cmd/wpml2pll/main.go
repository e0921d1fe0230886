// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/wpml2pll/internal/config"
	"github.com/olegiv/wpml2pll/internal/handler"
	"github.com/olegiv/wpml2pll/internal/i18n"
	"github.com/olegiv/wpml2pll/internal/logging"
	"github.com/olegiv/wpml2pll/internal/migration"
	"github.com/olegiv/wpml2pll/internal/scheduler"
	"github.com/olegiv/wpml2pll/internal/store"
	"github.com/olegiv/wpml2pll/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Trigger modes.
const (
	modeRun      = "run"
	modeServe    = "serve"
	modeSchedule = "schedule"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	mode := flag.String("mode", modeRun, "Trigger mode: run|serve|schedule")
	envFile := flag.String("env-file", ".env", "Environment file loaded when present")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "wpml2pll - migrate a WordPress site from WPML to Polylang\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nModes:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  run        Run every step now and exit\n")
		_, _ = fmt.Fprintf(os.Stderr, "  serve      Serve POST /migrate and drive the migration step by step\n")
		_, _ = fmt.Fprintf(os.Stderr, "  schedule   Run once at the first tick of W2P_SCHEDULE\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_DB_DSN                   WordPress database DSN (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_DB_DRIVER                mysql|sqlite (default: mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_TABLE_PREFIX             WordPress table prefix (default: wp_)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_BATCH_SIZE               Groups per step (default: 25000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_EXCLUDED_STRING_DOMAINS  Comma separated string domains to skip\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_STEP_INTERVAL            Pause between steps in run mode (default: 0s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_SCHEDULE                 Cron spec for schedule mode (default: @every 1h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_API_TOKEN                Bearer token for serve mode (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_REDIS_URL                Redis URL for the language cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  W2P_LANG                     Language of progress messages (default: en)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(*mode, *envFile, info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(mode, envFile string, info version.Info) error {
	switch mode {
	case modeRun, modeServe, modeSchedule:
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	// Load .env file if present
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	slog.Info("opening database", "driver", cfg.DBDriver, "prefix", cfg.TablePrefix)
	db, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	tables, err := store.NewTables(cfg.TablePrefix)
	if err != nil {
		return err
	}

	if err := store.Migrate(context.Background(), db, store.Dialect(cfg.DBDriver), tables); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Mirror WARN and ERROR logs into the event log table
	logger = slog.New(logging.NewEventLogHandler(textHandler, db, tables))
	slog.SetDefault(logger)

	a, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeServe:
		return serve(ctx, a, info)
	case modeSchedule:
		return schedule(ctx, a)
	}
	return runOnce(ctx, a)
}

func runOnce(ctx context.Context, a *app) error {
	runner := migration.NewRunner(a.newDriver, a.cfg.StepInterval, a.logger)
	steps, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration stopped after %d steps: %w", steps, err)
	}
	return nil
}

func schedule(ctx context.Context, a *app) error {
	runner := migration.NewRunner(a.newDriver, a.cfg.StepInterval, a.logger)
	s := scheduler.New(runner.Run, a.status().Status, migration.StatusCompleted, a.logger)
	if err := s.Start(a.cfg.Schedule); err != nil {
		return err
	}
	defer s.Stop()

	select {
	case res := <-s.Done():
		if res.Err != nil {
			return fmt.Errorf("scheduled migration stopped after %d steps: %w", res.Steps, res.Err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down scheduler...")
		return nil
	}
}

func serve(ctx context.Context, a *app, info version.Info) error {
	router := handler.NewRouter(handler.RouterConfig{
		Migrate:      handler.NewMigrateHandler(a.newDriver, a.logger),
		Status:       handler.NewStatusHandler(a.status(), a.logger),
		Health:       handler.NewHealthHandler(a.db, info.Version),
		Events:       handler.NewEventsHandler(a.db, a.tables, a.logger),
		Metrics:      a.metrics.Handler(),
		Token:        a.cfg.APIToken,
		MigrateRPS:   a.cfg.MigrateRPS,
		MigrateBurst: a.cfg.MigrateBurst,

		IsDevelopment: a.cfg.IsDevelopment(),
	})

	// A step over a large batch can take minutes
	srv := &http.Server{
		Addr:              a.cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", a.cfg.ServerAddr(), "env", a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
