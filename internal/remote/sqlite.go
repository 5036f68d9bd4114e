package remote

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a reusable-block collection in a local SQLite database. It
// serves the same Store contract as the HTTP client, so offline CLI runs
// and scenario tests exercise the exact gateway code paths.
//
// Uses WAL mode for concurrent read access.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the collection database at path. Pragmas
// and schema are applied automatically; the call is idempotent.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// FetchAll implements Store. Records come back in insertion order.
func (s *SQLite) FetchAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, content
		FROM reusable_blocks
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch reusable blocks: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Content); err != nil {
			return nil, fmt.Errorf("fetch reusable blocks: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch reusable blocks: %w", err)
	}
	return records, nil
}

// FetchOne implements Store. Missing ids return the structured not-found
// envelope.
func (s *SQLite) FetchOne(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, content
		FROM reusable_blocks
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &rec.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, NotFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("fetch reusable block %s: %w", id, err)
	}
	return rec, nil
}

// Save implements Store. Saving an existing id replaces its name and
// content in place, keeping the record's collection position.
func (s *SQLite) Save(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reusable_blocks (id, name, content)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			content = excluded.content
	`, rec.ID, rec.Name, rec.Content)
	if err != nil {
		return fmt.Errorf("save reusable block %s: %w", rec.ID, err)
	}
	return nil
}
