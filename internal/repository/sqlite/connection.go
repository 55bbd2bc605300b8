// Package sqlite stores countdown deadlines and sessions in a local SQLite
// file, the device storage of a single client.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dtroode/quicklogin/database"
)

// DefaultNamespace scopes rows written by a client without its own namespace.
const DefaultNamespace = "default"

// Open opens the database file at path, creating its directory, and applies
// pending migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.MigrateSQLite(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// one writer per process; concurrent writers only wait on busy_timeout
	db.SetMaxOpenConns(1)

	return db, nil
}

func namespaceOrDefault(namespace string) string {
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}
