package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"migrations/000001_create_notes.up.sql": {
		Data: []byte(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`),
	},
	"migrations/000001_create_notes.down.sql": {
		Data: []byte(`DROP TABLE notes;`),
	},
}

func openTestDB(t *testing.T) *SQLClient {
	t.Helper()
	client, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSQLClient_MigrateIsIdempotent(t *testing.T) {
	client := openTestDB(t)

	require.NoError(t, client.Migrate(testMigrations, "migrations"))
	require.NoError(t, client.Migrate(testMigrations, "migrations"))

	_, err := client.ExecContext(context.Background(), "INSERT INTO notes (body) VALUES (?)", "hello")
	assert.NoError(t, err)
}

func TestSQLClient_WithTransaction(t *testing.T) {
	ctx := context.Background()
	client := openTestDB(t)
	require.NoError(t, client.Migrate(testMigrations, "migrations"))

	t.Run("commit", func(t *testing.T) {
		err := client.WithTransaction(ctx, sql.LevelDefault, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "kept")
			return err
		})
		require.NoError(t, err)

		var n int
		require.NoError(t, client.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE body = ?", "kept").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("rollback", func(t *testing.T) {
		expectedErr := errors.New("abort")
		err := client.WithTransaction(ctx, sql.LevelDefault, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "dropped"); err != nil {
				return err
			}
			return expectedErr
		})
		assert.ErrorIs(t, err, expectedErr)

		var n int
		require.NoError(t, client.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE body = ?", "dropped").Scan(&n))
		assert.Equal(t, 0, n)
	})
}

func TestSQLClient_QueryContext(t *testing.T) {
	ctx := context.Background()
	client := openTestDB(t)
	require.NoError(t, client.Migrate(testMigrations, "migrations"))

	for _, body := range []string{"a", "b"} {
		_, err := client.ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", body)
		require.NoError(t, err)
	}

	rows, err := client.QueryContext(ctx, "SELECT body FROM notes ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var body string
		require.NoError(t, rows.Scan(&body))
		got = append(got, body)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, got)
}
