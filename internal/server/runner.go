// Package server provides the background maintenance components.
package server

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reelroom/reelroom/internal/cache"
	"github.com/reelroom/reelroom/internal/events"
)

// Config for the maintenance runner.
type Config struct {
	SweepInterval  time.Duration
	EventRetention time.Duration
}

// Runner owns the periodic maintenance work: sweeping expired cache
// entries and pruning old events.
type Runner struct {
	cache  *cache.Cache
	events *events.Log
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(c *cache.Cache, evlog *events.Log, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = 90 * 24 * time.Hour
	}
	return &Runner{
		cache:  c,
		events: evlog,
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run starts the maintenance loops.
// It blocks until the context is canceled or an error occurs.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.loop(ctx, r.sweepCache)
	})
	g.Go(func() error {
		return r.loop(ctx, r.pruneEvents)
	})

	return g.Wait()
}

func (r *Runner) loop(ctx context.Context, task func(context.Context)) error {
	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			task(ctx)
		}
	}
}

func (r *Runner) sweepCache(ctx context.Context) {
	removed, err := r.cache.CleanupExpired(ctx)
	if err != nil {
		r.logger.Warn("cache sweep failed", "error", err)
		return
	}
	if removed > 0 {
		r.logger.Info("cache sweep", "removed", removed)
	}
}

func (r *Runner) pruneEvents(ctx context.Context) {
	pruned, err := r.events.Prune(ctx, r.config.EventRetention)
	if err != nil {
		r.logger.Warn("event prune failed", "error", err)
		return
	}
	if pruned > 0 {
		r.logger.Info("events pruned", "removed", pruned)
	}
}
