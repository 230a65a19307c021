// Package cache provides SQLite-backed caching of catalog result sets
// and per-room exclusion tracking.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/reelroom/reelroom/internal/tmdb"
)

// DefaultTTL is how long a cached result set stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// Cache stores fetched content keyed by filter fingerprint.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// New creates a cache with the given TTL; ttl <= 0 uses DefaultTTL.
func New(db *sql.DB, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{db: db, ttl: ttl}
}

// Fingerprint derives the cache key for a filter: media type plus the
// genre IDs in sorted order, so ID order never splits the cache.
func Fingerprint(media tmdb.MediaType, genreIDs []int) string {
	sorted := make([]int, len(genreIDs))
	copy(sorted, genreIDs)
	sort.Ints(sorted)

	parts := make([]string, 0, len(sorted)+1)
	parts = append(parts, string(media))
	for _, id := range sorted {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ":")
}

// Get returns the cached result set for the filter, or false when the
// entry is absent or expired. Expiry here is logical; removal is
// CleanupExpired's concern.
func (c *Cache) Get(ctx context.Context, media tmdb.MediaType, genreIDs []int) ([]tmdb.Item, bool) {
	var payload string
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		"SELECT payload, expires_at FROM content_cache WHERE key = ?",
		Fingerprint(media, genreIDs),
	).Scan(&payload, &expiresAt)
	if err != nil || time.Now().After(expiresAt) {
		return nil, false
	}

	var items []tmdb.Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, false
	}
	return items, true
}

// Set stores or overwrites the result set for the filter.
func (c *Cache) Set(ctx context.Context, media tmdb.MediaType, genreIDs []int, items []tmdb.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	now := time.Now()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO content_cache (key, payload, total_available, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   total_available = excluded.total_available,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at`,
		Fingerprint(media, genreIDs), string(payload), len(items), now, now.Add(c.ttl),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes the entry for the filter unconditionally.
func (c *Cache) Invalidate(ctx context.Context, media tmdb.MediaType, genreIDs []int) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM content_cache WHERE key = ?", Fingerprint(media, genreIDs))
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// CleanupExpired physically deletes expired entries.
// Returns the number of entries removed.
func (c *Cache) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM content_cache WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	return result.RowsAffected()
}
