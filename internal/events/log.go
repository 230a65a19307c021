// Package events persists room lifecycle events to SQLite.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types recorded by the pool service.
const (
	TypeRoomCreated     = "room.created"
	TypePoolBuilt       = "pool.built"
	TypePoolReplenished = "pool.replenished"
	TypeRoomDeleted     = "room.deleted"
)

// Log is an append-only event log.
type Log struct {
	db *sql.DB
}

// NewLog creates a new event log.
func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Record is a persisted event with its raw payload.
type Record struct {
	ID         int64
	Type       string
	RoomID     string
	Payload    string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// Append persists an event and returns its ID.
func (l *Log) Append(ctx context.Context, eventType, roomID string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	result, err := l.db.ExecContext(ctx,
		"INSERT INTO events (event_type, room_id, payload, occurred_at) VALUES (?, ?, ?, ?)",
		eventType, roomID, string(data), time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	return result.LastInsertId()
}

// ForRoom returns all events for a room in append order.
func (l *Log) ForRoom(ctx context.Context, roomID string) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, event_type, room_id, payload, occurred_at, created_at
		 FROM events WHERE room_id = ? ORDER BY id ASC`, roomID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Type, &r.RoomID, &r.Payload, &r.OccurredAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune removes events older than the given duration.
func (l *Log) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := l.db.ExecContext(ctx,
		"DELETE FROM events WHERE occurred_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}
