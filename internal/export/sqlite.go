// Package export copies an index into formats other tools can query.
package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"filedex/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ToSQLite replaces the contents of the files table in the database at
// dbPath with records, keeping their order in row_id. The database and
// its parent directory are created when missing.
func ToSQLite(ctx context.Context, records []store.FileRecord, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO files (row_id, name, size_bytes, content_type) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if r.SizeBytes > math.MaxInt64 {
			return fmt.Errorf("row %d (%s): size %d does not fit an SQLite integer", i, r.Name, r.SizeBytes)
		}
		var ct sql.NullString
		if t, ok := r.Type(); ok {
			ct = sql.NullString{String: t, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, r.Name, int64(r.SizeBytes), ct); err != nil {
			return fmt.Errorf("insert %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}
