package room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reelroom/reelroom/internal/priority"
	"github.com/reelroom/reelroom/internal/tmdb"
)

// ErrNotFound is returned when a room does not exist.
var ErrNotFound = errors.New("room not found")

// Store provides access to room data.
type Store struct {
	db *sql.DB
}

// NewStore creates a new room store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create persists a new room with its criteria.
func (s *Store) Create(ctx context.Context, r Room) error {
	genres, err := json.Marshal(r.Criteria.GenreIDs)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO rooms (id, media_type, genre_ids, created_at) VALUES (?, ?, ?, ?)",
		r.ID, string(r.Criteria.MediaType), string(genres), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// Get loads a room by ID.
func (s *Store) Get(ctx context.Context, id string) (*Room, error) {
	var r Room
	var mediaType, genres string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, media_type, genre_ids, created_at FROM rooms WHERE id = ?", id,
	).Scan(&r.ID, &mediaType, &genres, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query room: %w", err)
	}

	r.Criteria.MediaType = tmdb.MediaType(mediaType)
	r.Criteria.RoomID = r.ID
	if err := json.Unmarshal([]byte(genres), &r.Criteria.GenreIDs); err != nil {
		return nil, fmt.Errorf("unmarshal genres: %w", err)
	}
	return &r, nil
}

// SavePool replaces the room's persisted pool with the given entries.
func (s *Store) SavePool(ctx context.Context, roomID string, entries []PoolEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM room_pool WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("clear pool: %w", err)
	}

	for i, e := range entries {
		item, err := json.Marshal(e.Item)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_pool (room_id, position, content_id, item, priority, added_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			roomID, i, e.Item.ID, string(item), int(e.Priority), e.AddedAt,
		); err != nil {
			return fmt.Errorf("insert pool entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Pool returns the room's pool entries in stored order.
func (s *Store) Pool(ctx context.Context, roomID string) ([]PoolEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item, priority, added_at FROM room_pool
		 WHERE room_id = ? ORDER BY position ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query pool: %w", err)
	}
	defer rows.Close()

	var entries []PoolEntry
	for rows.Next() {
		var e PoolEntry
		var item string
		var prio int
		if err := rows.Scan(&item, &prio, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan pool entry: %w", err)
		}
		if err := json.Unmarshal([]byte(item), &e.Item); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		e.Priority = priority.Priority(prio)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FreshCount reports how many pool entries the room has not been shown
// yet. Replenishment triggers when this falls below the configured
// minimum threshold.
func (s *Store) FreshCount(ctx context.Context, roomID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_pool p
		 WHERE p.room_id = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM room_exclusions e
		     WHERE e.room_id = p.room_id AND e.content_id = p.content_id
		   )`, roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count fresh: %w", err)
	}
	return n, nil
}

// Delete tears the room down, discarding its pool and exclusions.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM room_pool WHERE room_id = ?",
		"DELETE FROM room_exclusions WHERE room_id = ?",
		"DELETE FROM rooms WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, roomID); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
