package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIdempotent(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	require.NoError(t, RunMigrations(dbPath))
	// Second run is a no-op, not an error.
	require.NoError(t, RunMigrations(dbPath))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, table := range []string{"habits", "habit_entries", "chat_history"} {
		var name string
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name),
			"table: %s", table)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(dbPath))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("boom")
	err = WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO habits(id, user_id, name, color, created_at)
			VALUES ('h1', 1, 'Water', '#2ecc40', '2026-03-10T00:00:00Z')`)
		if err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count))
	require.Zero(t, count)
}

func TestNow(t *testing.T) {
	t.Parallel()
	n := Now()
	require.Equal(t, time.UTC, n.Location())
	require.Zero(t, n.Nanosecond())
}
