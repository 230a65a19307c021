package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/reelroom/reelroom/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestLog_AppendAndRead(t *testing.T) {
	l := NewLog(setupTestDB(t))
	ctx := context.Background()

	id, err := l.Append(ctx, TypeRoomCreated, "room-1", map[string]any{"mediaType": "movie"})
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = l.Append(ctx, TypePoolBuilt, "room-1", map[string]any{"size": 30})
	require.NoError(t, err)
	_, err = l.Append(ctx, TypePoolBuilt, "room-2", nil)
	require.NoError(t, err)

	records, err := l.ForRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, TypeRoomCreated, records[0].Type)
	assert.Equal(t, TypePoolBuilt, records[1].Type)
	assert.JSONEq(t, `{"size":30}`, records[1].Payload)
}

func TestLog_Prune(t *testing.T) {
	db := setupTestDB(t)
	l := NewLog(db)
	ctx := context.Background()

	_, err := l.Append(ctx, TypePoolBuilt, "room-1", nil)
	require.NoError(t, err)

	// Backdate the event so the prune cutoff catches it.
	_, err = db.Exec("UPDATE events SET occurred_at = ?", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	removed, err := l.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	records, err := l.ForRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}
