// Package sqlite persists plan history in a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// OpenDB opens a SQLite database at the given path, creating its directory
// if needed, and runs migrations. An in-memory database is pinned to a single
// connection so every query sees the same schema.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plan_runs (
		id               TEXT PRIMARY KEY,
		created_at       TEXT NOT NULL,
		initial_capacity INTEGER NOT NULL,
		first_year       INTEGER NOT NULL,
		last_year        INTEGER NOT NULL,
		objective        REAL NOT NULL,
		total_revenue    TEXT NOT NULL,
		total_budget     TEXT NOT NULL,
		total_cost       TEXT NOT NULL,
		total_savings    TEXT NOT NULL,
		plans_json       TEXT NOT NULL,
		costs_json       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at ON plan_runs(created_at)`,
}

// Migrate runs all schema migrations. Statements are idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
