// Package journal records PATH operations and pending uninstall snapshots in
// a small SQLite database.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"

	"github.com/VoxDroid/amcsetup/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the journal at path and applies the schema.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One installer step at a time; a single connection avoids SQLITE_BUSY
	// between our own statements.
	db.SetMaxOpenConns(1)
	if err := ApplyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// OpenDefault opens the journal at config.DBPath.
func OpenDefault() (*Journal, error) {
	p, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	return Open(p)
}

// ApplyMigrations applies the embedded schema. Every statement is
// idempotent, so it runs on each open.
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
