// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"occasio/internal/config"
	"occasio/internal/feed"
	"occasio/internal/genai"
	"occasio/internal/handler"
	"occasio/internal/logging"
	"occasio/internal/middleware"
	"occasio/internal/render"
	"occasio/internal/scheduler"
	"occasio/internal/service"
	"occasio/internal/session"
	"occasio/internal/store"
	"occasio/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Occasio - Personal Event Planner\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_AI_ENDPOINT       AI generation endpoint URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_AI_API_KEY        AI endpoint API key (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_DB_PATH           SQLite database path (default: ./data/occasio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCCASIO_ENV               Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("occasio %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the activity log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	activityLogHandler := logging.NewActivityLogHandler(textHandler, db)
	logger = slog.New(activityLogHandler)
	slog.SetDefault(logger)
	slog.Info("activity log integration enabled", "min_level", "warn")

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Initialize the live feed hub and services
	hub := feed.NewHub(logger)
	eventStore := store.NewEventStore(db)
	eventService := service.NewEventService(eventStore, hub, logger)
	generator := genai.NewClient(cfg.AIEndpoint, cfg.AIAPIKey)
	generateService := service.NewGenerateService(eventStore, generator, eventService, logger)
	activityService := service.NewActivityService(db)
	slog.Info("AI generation client initialized", "endpoint", cfg.AIEndpoint)

	// Initialize and start scheduler
	retention := time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour
	sched := scheduler.New(db, logger, retention)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.StripTrailingSlash)

	// Security headers middleware (CSP, HSTS, X-Frame-Options, etc.)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	// Request path middleware for logging context
	r.Use(middleware.RequestPath)

	r.Use(sessionManager.LoadAndSave)

	// CSRF protection middleware. The feed endpoint is exempt: the WebSocket
	// handshake is a GET and carries no form body.
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Login protection: per-IP rate limit plus account lockout on repeated failures
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Public rate limiter for auth routes (defense-in-depth)
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection, activityService)
	eventsHandler := handler.NewEventsHandler(eventService, generateService, renderer)
	generateHandler := handler.NewGenerateHandler(eventService, generateService)
	activityHandler := handler.NewActivityHandler(activityService, renderer)
	feedHandler := handler.NewFeedHandler(hub, eventService, logger)
	healthHandler := handler.NewHealthHandler(db, sessionManager)

	// Health check routes (public, more detail for authenticated callers)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Auth routes (public, with CSRF and rate limiting)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteGuest, authHandler.Guest)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Signed-in routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, handler.RouteEvents, http.StatusSeeOther)
		})

		r.Get(handler.RouteEvents, eventsHandler.List)
		r.Post(handler.RouteEvents, eventsHandler.Create)
		r.Get(handler.RouteEvents+handler.RouteParamPublicID, eventsHandler.Detail)
		r.Post(handler.RouteEvents+handler.RouteParamPublicID+handler.RouteSuffixGenerate, generateHandler.Start)
		r.Get(handler.RouteEvents+handler.RouteParamPublicID+handler.RouteSuffixGeneration, generateHandler.Status)

		r.Get(handler.RouteActivity, activityHandler.List)

		r.Get("/api/events", eventsHandler.ListJSON)
	})

	// The feed connection is long-lived, so it runs without the request
	// timeout. The handshake is a GET and is exempt from the CSRF check.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SkipCSRF(handler.RouteFeed))
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Get(handler.RouteFeed, feedHandler.Serve)
	})

	// Static file serving from the embedded bundle
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Create server with appropriate timeouts. WriteTimeout stays at zero so
	// long-lived feed connections are not cut off.
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
