// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

// Command jotutor runs the tutoring marketplace: the public bilingual
// site, the checkout flow and the admin console, all in one process
// over a single SQLite database.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jotutor/jotutor/internal/analytics"
	"github.com/jotutor/jotutor/internal/cache"
	"github.com/jotutor/jotutor/internal/catalog"
	"github.com/jotutor/jotutor/internal/config"
	"github.com/jotutor/jotutor/internal/geoip"
	"github.com/jotutor/jotutor/internal/handler"
	"github.com/jotutor/jotutor/internal/i18n"
	"github.com/jotutor/jotutor/internal/logging"
	"github.com/jotutor/jotutor/internal/media"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/payment"
	"github.com/jotutor/jotutor/internal/render"
	"github.com/jotutor/jotutor/internal/scheduler"
	"github.com/jotutor/jotutor/internal/session"
	"github.com/jotutor/jotutor/internal/store"
	"github.com/jotutor/jotutor/internal/translate"
	"github.com/jotutor/jotutor/web"
)

var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "JoTutor - bilingual tutoring marketplace\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_DB_PATH         SQLite database path (default: ./data/jotutor.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_ENV             development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_REDIS_URL       Redis URL for the projection cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_OPENAI_API_KEY  Enables translation and the chat assistant\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JOTUTOR_GATEWAY_URL     Card gateway base URL (optional)\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("jotutor %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := i18n.Init(slog.Default()); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Route WARN and ERROR records into the events table as well.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if cfg.DoSeed {
		if err := store.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacheBackend, err := cache.NewCache(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	backend := "memory"
	if cfg.UseRedisCache() {
		backend = "redis"
	}
	slog.Info("projection cache ready", "backend", backend)

	var translator *translate.Client
	if cfg.TranslationEnabled() {
		translator, err = translate.New(translate.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
		if err != nil && !errors.Is(err, translate.ErrNotConfigured) {
			return fmt.Errorf("initializing translator: %w", err)
		}
		slog.Info("translation and chat assistant enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("translation disabled, English site copy falls back to Arabic")
	}

	// The catalog takes the translator as an interface; a nil *Client
	// must stay a nil interface.
	var catalogTranslator catalog.Translator
	if translator != nil {
		catalogTranslator = translator
	}
	catalogService := catalog.NewService(db, cacheBackend, catalogTranslator)

	var gateway payment.Gateway
	if cfg.GatewayEnabled() {
		gateway = payment.NewHTTPGateway(payment.GatewayConfig{
			BaseURL: cfg.GatewayURL,
			APIKey:  cfg.GatewayAPIKey,
		})
		slog.Info("card gateway enabled")
	} else {
		slog.Info("card gateway not configured, card checkouts disabled")
	}
	paymentService := payment.NewService(db, gateway)

	mediaStore, err := media.NewStore(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("initializing media store: %w", err)
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable", "path", cfg.GeoIPDBPath, "error", err)
		geo, _ = geoip.Open("")
	}
	defer func() { _ = geo.Close() }()

	tracker := analytics.NewTracker(db, geo)

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS(),
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	h := handler.New(handler.Config{
		DB:              db,
		Renderer:        renderer,
		Sessions:        sessionManager,
		Catalog:         catalogService,
		Payments:        paymentService,
		Assistant:       translator,
		Media:           mediaStore,
		Tracker:         tracker,
		LoginProtection: loginProtection,
		BankAccount: payment.BankAccount{
			BankName:    "Jordan Kuwait Bank",
			AccountName: "JoTutor LLC",
			IBAN:        cfg.BankIBAN,
		},
	})

	routes := h.Routes(handler.RouterConfig{
		SessionSecret: cfg.SessionSecret,
		IsDev:         cfg.IsDevelopment(),
		UploadsDir:    cfg.UploadsDir,
		StaticFS:      http.FS(staticFS()),
	})

	sched := scheduler.New(scheduler.DefaultConfig(), paymentService, tracker, geo, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           routes,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func templatesFS() fs.FS {
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func staticFS() fs.FS {
	sub, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
