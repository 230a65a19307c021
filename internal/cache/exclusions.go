package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Exclusions tracks which content IDs each room has already been shown.
// The set only grows; it is discarded wholesale on room teardown.
type Exclusions struct {
	db *sql.DB
}

// NewExclusions creates an exclusion tracker over the shared database.
func NewExclusions(db *sql.DB) *Exclusions {
	return &Exclusions{db: db}
}

// TrackShown adds content IDs to the room's exclusion set. Concurrent
// calls for the same room merge: each ID inserts idempotently inside one
// transaction, so no writer can drop another writer's entries.
func (e *Exclusions) TrackShown(ctx context.Context, roomID string, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, id := range contentIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO room_exclusions (room_id, content_id, shown_at) VALUES (?, ?, ?)",
			roomID, id, now,
		); err != nil {
			return fmt.Errorf("track shown: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Excluded returns the room's accumulated exclusion set. An unknown room
// yields an empty set, never an error.
func (e *Exclusions) Excluded(ctx context.Context, roomID string) (map[string]struct{}, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT content_id FROM room_exclusions WHERE room_id = ?", roomID)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// Clear removes all tracked exclusions for a room. Clearing a room with
// nothing tracked is a no-op.
func (e *Exclusions) Clear(ctx context.Context, roomID string) error {
	_, err := e.db.ExecContext(ctx,
		"DELETE FROM room_exclusions WHERE room_id = ?", roomID)
	if err != nil {
		return fmt.Errorf("clear exclusions: %w", err)
	}
	return nil
}
