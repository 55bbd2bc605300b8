package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrateSQLite_CreatesTables(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, MigrateSQLite(ctx, db))
	// applying twice is a no-op
	require.NoError(t, MigrateSQLite(ctx, db))

	for _, table := range []string{"kv_store", "sessions"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrations_Embedded(t *testing.T) {
	for _, dir := range []string{postgresDir, sqliteDir} {
		entries, err := migrations.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2, dir)
	}
}
