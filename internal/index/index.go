// Package index stores rendered metadata documents in a sqlite database
// that is rebuilt on every harvest run.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// Record is one indexed metadata document.
type Record struct {
	Identifier string
	Name       string
	Type       string
	Schema     string
	Title      string
	RunID      string
	XML        string
	Updated    time.Time
}

// DuplicateError reports a second record with an identifier already indexed
// in the current run.
type DuplicateError struct {
	Identifier string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("identifier %q is already indexed", e.Identifier)
}

func (e *DuplicateError) Unwrap() error {
	return oerrors.ErrValidation
}

// Index is a sqlite-backed metadata record store.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the index database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	ix := &Index{db: db, path: path}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return ix, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file path.
func (ix *Index) Path() string {
	return ix.path
}

func (ix *Index) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			identifier TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'dataset',
			schema TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL,
			xml TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_type ON records(type)`,
	}
	for _, m := range migrations {
		if _, err := ix.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes every record.
func (ix *Index) Reset(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	return nil
}

// Insert adds r. A record whose identifier is already present is rejected
// with *DuplicateError.
func (ix *Index) Insert(ctx context.Context, r Record) error {
	if r.Identifier == "" {
		return fmt.Errorf("%w: record %q has no identifier", oerrors.ErrValidation, r.Name)
	}
	if r.Updated.IsZero() {
		r.Updated = time.Now().UTC()
	}
	res, err := ix.db.ExecContext(ctx,
		`INSERT INTO records (identifier, name, type, schema, title, run_id, xml, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(identifier) DO NOTHING`,
		r.Identifier, r.Name, r.Type, r.Schema, r.Title, r.RunID, r.XML, r.Updated)
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.Identifier, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &DuplicateError{Identifier: r.Identifier}
	}
	return nil
}

// Get returns the record with identifier.
func (ix *Index) Get(ctx context.Context, identifier string) (Record, error) {
	row := ix.db.QueryRowContext(ctx,
		`SELECT identifier, name, type, schema, title, run_id, xml, updated_at
		 FROM records WHERE identifier = ?`, identifier)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: record %q", oerrors.ErrNotFound, identifier)
	}
	return r, err
}

// List returns every record ordered by identifier.
func (ix *Index) List(ctx context.Context) ([]Record, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT identifier, name, type, schema, title, run_id, xml, updated_at
		 FROM records ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of records.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var r Record
	err := s.Scan(&r.Identifier, &r.Name, &r.Type, &r.Schema, &r.Title, &r.RunID, &r.XML, &r.Updated)
	return r, err
}
