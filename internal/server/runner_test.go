package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/reelroom/reelroom/internal/cache"
	"github.com/reelroom/reelroom/internal/events"
	"github.com/reelroom/reelroom/internal/migrations"
	"github.com/reelroom/reelroom/internal/tmdb"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or each pool connection would see its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestRunner_StartsAndStops(t *testing.T) {
	db := setupTestDB(t)

	runner := NewRunner(cache.New(db, time.Hour), events.NewLog(db), Config{
		SweepInterval: 100 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	// Give the loops time to start
	time.Sleep(50 * time.Millisecond)

	// Cancel and wait for clean shutdown
	cancel()

	select {
	case err := <-done:
		// context.Canceled is expected
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}
}

func TestRunner_SweepsExpiredCache(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	expiring := cache.New(db, time.Millisecond)
	require.NoError(t, expiring.Set(ctx, tmdb.MediaMovie, []int{28}, []tmdb.Item{
		{ID: "550", Title: "Fight Club", Overview: "o", GenreIDs: []int{18}},
	}))
	time.Sleep(5 * time.Millisecond)

	runner := NewRunner(expiring, events.NewLog(db), Config{
		SweepInterval: 10 * time.Millisecond,
	}, nil)

	runCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = runner.Run(runCtx)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM content_cache").Scan(&n))
	require.Zero(t, n, "expired cache entries must be physically removed")
}

func TestRunner_PrunesOldEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	evlog := events.NewLog(db)
	_, err := evlog.Append(ctx, events.TypeRoomCreated, "room-1", nil)
	require.NoError(t, err)

	// Backdate the event beyond the retention window.
	_, err = db.Exec("UPDATE events SET occurred_at = ?", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	runner := NewRunner(cache.New(db, time.Hour), evlog, Config{
		SweepInterval:  10 * time.Millisecond,
		EventRetention: 24 * time.Hour,
	}, nil)

	runCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = runner.Run(runCtx)

	recs, err := evlog.ForRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestNewRunner_Defaults(t *testing.T) {
	db := setupTestDB(t)

	// Should not panic with nil logger
	runner := NewRunner(cache.New(db, time.Hour), events.NewLog(db), Config{}, nil)
	require.NotNil(t, runner)
	require.NotNil(t, runner.logger)
	require.Equal(t, time.Hour, runner.config.SweepInterval)
	require.Equal(t, 90*24*time.Hour, runner.config.EventRetention)
}
