// Package pool orchestrates content pool construction: criteria
// validation, cache consultation, tiered ranking against the catalog,
// and replenishment under a room's exclusion set.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/reelroom/reelroom/internal/cache"
	"github.com/reelroom/reelroom/internal/events"
	"github.com/reelroom/reelroom/internal/priority"
	"github.com/reelroom/reelroom/internal/room"
	"github.com/reelroom/reelroom/internal/tmdb"
)

// Defaults for the configuration surface.
const (
	DefaultPoolSize     = 30
	DefaultMinThreshold = 5
	DefaultMaxGenres    = 3
)

// Config tunes the orchestrator. Zero values take the defaults.
type Config struct {
	PoolSize     int
	MinThreshold int
	MaxGenres    int
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.MinThreshold <= 0 {
		c.MinThreshold = DefaultMinThreshold
	}
	if c.MaxGenres <= 0 {
		c.MaxGenres = DefaultMaxGenres
	}
	return c
}

// Catalog is the slice of the TMDB client the service depends on.
type Catalog interface {
	Discover(ctx context.Context, q tmdb.DiscoverQuery) ([]tmdb.Item, error)
	Genres(ctx context.Context, media tmdb.MediaType) ([]tmdb.Genre, error)
}

// Service builds and replenishes room content pools.
type Service struct {
	catalog    Catalog
	ranker     *priority.Ranker
	cache      *cache.Cache
	exclusions *cache.Exclusions
	rooms      *room.Store
	events     *events.Log
	cfg        Config
	log        *slog.Logger

	// Concurrent builds for the same filter fingerprint collapse into
	// one provider fetch.
	sf singleflight.Group
}

// NewService creates the orchestrator. rankOpts are passed through to
// the internal ranker (tests use them to pin the random source).
func NewService(catalog Catalog, c *cache.Cache, ex *cache.Exclusions, rooms *room.Store, evlog *events.Log, cfg Config, log *slog.Logger, rankOpts ...priority.Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog:    catalog,
		ranker:     priority.NewRanker(catalog, log.With("component", "priority"), rankOpts...),
		cache:      c,
		exclusions: ex,
		rooms:      rooms,
		events:     evlog,
		cfg:        cfg.withDefaults(),
		log:        log.With("component", "pool"),
	}
}

// validate enforces the criteria invariants before any provider call.
func (s *Service) validate(criteria room.Criteria) error {
	if !criteria.MediaType.Valid() {
		return &ValidationError{
			Code:    CodeInvalidMediaType,
			Message: fmt.Sprintf("media type must be %q or %q", tmdb.MediaMovie, tmdb.MediaTV),
		}
	}
	if len(criteria.GenreIDs) > s.cfg.MaxGenres {
		return &ValidationError{
			Code:    CodeTooManyGenres,
			Message: fmt.Sprintf("at most %d genres allowed, got %d", s.cfg.MaxGenres, len(criteria.GenreIDs)),
		}
	}
	for _, id := range criteria.GenreIDs {
		if id <= 0 {
			return &ValidationError{
				Code:    CodeInvalidGenreID,
				Message: fmt.Sprintf("genre IDs must be positive integers, got %d", id),
			}
		}
	}
	return nil
}

// CreatePool validates the criteria and assembles a pool of the target
// size, serving from the cache when a fresh entry is large enough and
// writing the cache after a live build. Provider failures degrade to a
// smaller (possibly empty) pool, never an error.
func (s *Service) CreatePool(ctx context.Context, criteria room.Criteria) ([]room.PoolEntry, error) {
	if err := s.validate(criteria); err != nil {
		return nil, err
	}

	key := cache.Fingerprint(criteria.MediaType, criteria.GenreIDs)
	v, _, _ := s.sf.Do(key, func() (any, error) {
		return s.buildPool(ctx, criteria, nil, true), nil
	})
	return v.([]room.PoolEntry), nil
}

// CreateRoom creates a room around the criteria, builds its initial
// pool, and persists both.
func (s *Service) CreateRoom(ctx context.Context, criteria room.Criteria) (*room.Room, []room.PoolEntry, error) {
	if err := s.validate(criteria); err != nil {
		return nil, nil, err
	}

	r := room.Room{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	criteria.RoomID = r.ID
	r.Criteria = criteria

	entries, err := s.CreatePool(ctx, criteria)
	if err != nil {
		return nil, nil, err
	}

	if err := s.rooms.Create(ctx, r); err != nil {
		return nil, nil, fmt.Errorf("create room: %w", err)
	}
	if err := s.rooms.SavePool(ctx, r.ID, entries); err != nil {
		return nil, nil, fmt.Errorf("save pool: %w", err)
	}

	s.appendEvent(ctx, events.TypeRoomCreated, r.ID, criteria)
	s.appendEvent(ctx, events.TypePoolBuilt, r.ID, map[string]int{"size": len(entries)})

	s.log.Info("room created",
		"room_id", r.ID,
		"media_type", criteria.MediaType,
		"genres", criteria.GenreIDs,
		"pool_size", len(entries),
	)
	return &r, entries, nil
}

// Replenish rebuilds a room's pool with the room's original criteria,
// excluding everything the room has already been shown plus any IDs the
// caller supplies. The criteria must be identical to those the room was
// created with.
func (s *Service) Replenish(ctx context.Context, roomID string, criteria room.Criteria, excludeIDs []string) ([]room.PoolEntry, error) {
	if err := s.validate(criteria); err != nil {
		return nil, err
	}

	stored, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !criteria.Equal(stored.Criteria) {
		return nil, &ValidationError{
			Code:    CodeCriteriaMismatch,
			Message: "replenishment criteria must be identical to the room's original filter",
		}
	}

	exclude, err := s.exclusions.Excluded(ctx, roomID)
	if err != nil {
		// Degrade: an unreadable exclusion set behaves as empty rather
		// than failing the build.
		s.log.Warn("exclusion read failed, replenishing without stored exclusions",
			"room_id", roomID, "error", err)
		exclude = make(map[string]struct{})
	}
	for _, id := range excludeIDs {
		exclude[id] = struct{}{}
	}

	// Build from the room's stored criteria, not the caller's copy.
	entries := s.buildPool(ctx, stored.Criteria, exclude, false)

	if err := s.rooms.SavePool(ctx, roomID, entries); err != nil {
		return nil, fmt.Errorf("save pool: %w", err)
	}
	s.appendEvent(ctx, events.TypePoolReplenished, roomID, map[string]int{
		"size":     len(entries),
		"excluded": len(exclude),
	})

	s.log.Info("pool replenished", "room_id", roomID, "size", len(entries), "excluded", len(exclude))
	return entries, nil
}

// ShouldReplenish reports whether the room's unseen pool content has
// dropped below the minimum threshold.
func (s *Service) ShouldReplenish(ctx context.Context, roomID string) (bool, error) {
	fresh, err := s.rooms.FreshCount(ctx, roomID)
	if err != nil {
		return false, err
	}
	return fresh < s.cfg.MinThreshold, nil
}

// Genres passes the provider's genre vocabulary through to the caller.
func (s *Service) Genres(ctx context.Context, media tmdb.MediaType) ([]tmdb.Genre, error) {
	if !media.Valid() {
		return nil, &ValidationError{
			Code:    CodeInvalidMediaType,
			Message: fmt.Sprintf("media type must be %q or %q", tmdb.MediaMovie, tmdb.MediaTV),
		}
	}
	return s.catalog.Genres(ctx, media)
}

// TrackShown records content the room has displayed.
func (s *Service) TrackShown(ctx context.Context, roomID string, contentIDs []string) error {
	return s.exclusions.TrackShown(ctx, roomID, contentIDs)
}

// Room loads a room and its persisted pool.
func (s *Service) Room(ctx context.Context, roomID string) (*room.Room, []room.PoolEntry, error) {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.rooms.Pool(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return r, entries, nil
}

// DeleteRoom tears a room down, discarding pool and exclusions.
func (s *Service) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return err
	}
	s.appendEvent(ctx, events.TypeRoomDeleted, roomID, nil)
	return nil
}

// buildPool runs the cache-then-rank pipeline. The exclusion set, when
// present, filters cached content and feeds every tier fetch.
func (s *Service) buildPool(ctx context.Context, criteria room.Criteria, exclude map[string]struct{}, writeCache bool) []room.PoolEntry {
	now := time.Now()

	if items, ok := s.cache.Get(ctx, criteria.MediaType, criteria.GenreIDs); ok {
		fresh := filterExcluded(items, exclude)
		if len(fresh) >= s.cfg.PoolSize {
			s.log.Debug("pool served from cache",
				"media_type", criteria.MediaType, "genres", criteria.GenreIDs)
			return s.stamp(fresh[:s.cfg.PoolSize], criteria, now)
		}
	}

	ranked := s.ranker.Rank(ctx, criteria.MediaType, criteria.GenreIDs, exclude, s.cfg.PoolSize)

	entries := make([]room.PoolEntry, 0, len(ranked))
	items := make([]tmdb.Item, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, room.PoolEntry{Item: r.Item, Priority: r.Priority, AddedAt: now})
		items = append(items, r.Item)
	}

	// Only unfiltered builds feed the shared cache; an exclusion-shaped
	// result is specific to one room.
	if writeCache && len(items) > 0 {
		if err := s.cache.Set(ctx, criteria.MediaType, criteria.GenreIDs, items); err != nil {
			s.log.Warn("cache write failed", "error", err)
		}
	}

	return entries
}

// stamp decorates cached items with their tier and a timestamp. Tier
// membership is recomputed from the genre partition, which is exactly
// how the items were tiered when the cache entry was written.
func (s *Service) stamp(items []tmdb.Item, criteria room.Criteria, now time.Time) []room.PoolEntry {
	effective := tmdb.TranslateGenres(criteria.MediaType, criteria.GenreIDs)
	entries := make([]room.PoolEntry, len(items))
	for i, it := range items {
		entries[i] = room.PoolEntry{
			Item:     it,
			Priority: priority.Classify(it.GenreIDs, effective),
			AddedAt:  now,
		}
	}
	return entries
}

func (s *Service) appendEvent(ctx context.Context, eventType, roomID string, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Append(ctx, eventType, roomID, payload); err != nil {
		s.log.Warn("event append failed", "type", eventType, "room_id", roomID, "error", err)
	}
}

func filterExcluded(items []tmdb.Item, exclude map[string]struct{}) []tmdb.Item {
	if len(exclude) == 0 {
		return items
	}
	out := make([]tmdb.Item, 0, len(items))
	for _, it := range items {
		if _, skip := exclude[it.ID]; skip {
			continue
		}
		out = append(out, it)
	}
	return out
}
