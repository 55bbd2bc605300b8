// Package database holds the embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

const (
	postgresDir = "migrations/postgres"
	sqliteDir   = "migrations/sqlite"
)

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// Migrate applies the PostgreSQL migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	return up(ctx, db, "postgres", postgresDir)
}

// MigrateSQLite applies the SQLite migrations to db.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, "sqlite3", sqliteDir)
}

func up(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
