package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/reelroom/reelroom/internal/migrations"
	"github.com/reelroom/reelroom/internal/tmdb"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or each pool connection would see its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testItems() []tmdb.Item {
	return []tmdb.Item{
		{ID: "550", Title: "Fight Club", Overview: "o", GenreIDs: []int{18}, Rating: 8.4},
		{ID: "603", Title: "The Matrix", Overview: "o", GenreIDs: []int{28, 878}, Rating: 8.2},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(setupTestDB(t), time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, tmdb.MediaMovie, []int{28, 12})
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28, 12}, testItems()))

	got, ok := c.Get(ctx, tmdb.MediaMovie, []int{28, 12})
	require.True(t, ok)
	assert.Equal(t, testItems(), got)
}

func TestCache_KeyIsOrderIndependent(t *testing.T) {
	c := New(setupTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28, 12}, testItems()))

	got, ok := c.Get(ctx, tmdb.MediaMovie, []int{12, 28})
	require.True(t, ok, "reordered genre IDs must hit the same entry")
	assert.Len(t, got, 2)
}

func TestCache_MediaTypeSplitsKey(t *testing.T) {
	c := New(setupTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()))

	_, ok := c.Get(ctx, tmdb.MediaTV, []int{28})
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := New(setupTestDB(t), time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, tmdb.MediaMovie, []int{28})
	assert.False(t, ok)
}

func TestCache_SetOverwrites(t *testing.T) {
	c := New(setupTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()))
	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()[:1]))

	got, ok := c.Get(ctx, tmdb.MediaMovie, []int{28})
	require.True(t, ok)
	assert.Len(t, got, 1)
}

func TestCache_Invalidate(t *testing.T) {
	c := New(setupTestDB(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()))
	require.NoError(t, c.Invalidate(ctx, tmdb.MediaMovie, []int{28}))

	_, ok := c.Get(ctx, tmdb.MediaMovie, []int{28})
	assert.False(t, ok)

	// Invalidating an absent entry is fine.
	assert.NoError(t, c.Invalidate(ctx, tmdb.MediaMovie, []int{28}))
}

func TestCache_CleanupExpired(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	expired := New(db, time.Millisecond)
	fresh := New(db, time.Hour)

	require.NoError(t, expired.Set(ctx, tmdb.MediaMovie, []int{28}, testItems()))
	require.NoError(t, expired.Set(ctx, tmdb.MediaMovie, []int{35}, testItems()))
	require.NoError(t, fresh.Set(ctx, tmdb.MediaTV, []int{18}, testItems()))
	time.Sleep(5 * time.Millisecond)

	removed, err := fresh.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, ok := fresh.Get(ctx, tmdb.MediaTV, []int{18})
	assert.True(t, ok, "fresh entry must survive the sweep")

	// Sweep with nothing to remove.
	removed, err = fresh.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint(tmdb.MediaMovie, []int{28, 12}), Fingerprint(tmdb.MediaMovie, []int{12, 28}))
	assert.NotEqual(t, Fingerprint(tmdb.MediaMovie, []int{28}), Fingerprint(tmdb.MediaTV, []int{28}))
	assert.Equal(t, "movie", Fingerprint(tmdb.MediaMovie, nil))
	assert.Equal(t, "movie:12:28", Fingerprint(tmdb.MediaMovie, []int{28, 12}))
}
