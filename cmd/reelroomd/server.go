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
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/reelroom/reelroom/internal/api/v1"
	"github.com/reelroom/reelroom/internal/cache"
	"github.com/reelroom/reelroom/internal/config"
	"github.com/reelroom/reelroom/internal/events"
	"github.com/reelroom/reelroom/internal/migrations"
	"github.com/reelroom/reelroom/internal/pool"
	"github.com/reelroom/reelroom/internal/room"
	"github.com/reelroom/reelroom/internal/server"
	"github.com/reelroom/reelroom/internal/tmdb"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Run migrations
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Catalog client ===
	catalog := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithRateInterval(cfg.TMDB.RateLimitInterval.Std()),
		tmdb.WithBackoffBase(cfg.TMDB.BackoffBase.Std()),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.TMDB.RequestTimeout.Std()}),
		tmdb.WithLogger(logger),
	)

	// === Stores ===
	contentCache := cache.New(db, time.Duration(cfg.Pool.CacheTTLDays)*24*time.Hour)
	exclusions := cache.NewExclusions(db)
	roomStore := room.NewStore(db)
	eventLog := events.NewLog(db)

	// === Services ===
	svc := pool.NewService(catalog, contentCache, exclusions, roomStore, eventLog, pool.Config{
		PoolSize:     cfg.Pool.Size,
		MinThreshold: cfg.Pool.MinThreshold,
		MaxGenres:    cfg.Pool.MaxGenres,
	}, logger)

	// === Background maintenance ===
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := server.NewRunner(contentCache, eventLog, server.Config{
		EventRetention: time.Duration(cfg.Events.RetentionDays) * 24 * time.Hour,
	}, logger)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("runner error", "error", err)
		}
	}()

	// === HTTP Setup ===
	mux := http.NewServeMux()
	v1.New(svc, catalog).RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"pool_size", cfg.Pool.Size,
		"min_threshold", cfg.Pool.MinThreshold,
		"cache_ttl_days", cfg.Pool.CacheTTLDays,
		"log_level", cfg.Server.LogLevel,
	)

	// === HTTP Server ===
	srv := &http.Server{Addr: addr, Handler: logRequests(mux, logger)}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	// Cancel background maintenance
	cancel()

	// Graceful HTTP shutdown with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
