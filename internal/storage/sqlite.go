package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/cvtext/internal/models"
)

var _ Journal = (*SQLiteJournal)(nil)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The watcher records from several goroutines; one connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		format TEXT NOT NULL,
		strategy TEXT,
		error_kind TEXT,
		error TEXT,
		chars INTEGER NOT NULL DEFAULT 0,
		output_path TEXT,
		extracted_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_extracted_at ON extractions(extracted_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts or replaces an entry. A zero ExtractedAt is set to now.
func (s *SQLiteJournal) Record(ctx context.Context, e *models.JournalEntry) error {
	if e.ExtractedAt.IsZero() {
		e.ExtractedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, path, content_hash, format, strategy, error_kind, error, chars, output_path, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   path = excluded.path,
		   content_hash = excluded.content_hash,
		   format = excluded.format,
		   strategy = excluded.strategy,
		   error_kind = excluded.error_kind,
		   error = excluded.error,
		   chars = excluded.chars,
		   output_path = excluded.output_path,
		   extracted_at = excluded.extracted_at`,
		e.ID, e.Path, e.ContentHash, e.Format, e.Strategy, e.ErrorKind, e.Error, e.Chars, e.OutputPath, e.ExtractedAt,
	)
	return err
}

const selectEntry = `SELECT id, path, content_hash, format, strategy, error_kind, error, chars, output_path, extracted_at FROM extractions`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.JournalEntry, error) {
	var e models.JournalEntry
	var strategy, errorKind, errMsg, output sql.NullString
	if err := row.Scan(&e.ID, &e.Path, &e.ContentHash, &e.Format, &strategy, &errorKind, &errMsg, &e.Chars, &output, &e.ExtractedAt); err != nil {
		return nil, err
	}
	e.Strategy = strategy.String
	e.ErrorKind = errorKind.String
	e.Error = errMsg.String
	e.OutputPath = output.String
	return &e, nil
}

// Get returns the entry for id, or ErrNotFound.
func (s *SQLiteJournal) Get(ctx context.Context, id string) (*models.JournalEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes the entry for id. Deleting a missing entry is not an error.
func (s *SQLiteJournal) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM extractions WHERE id = ?`, id)
	return err
}

// List returns entries with offset and limit, most recent first.
func (s *SQLiteJournal) List(ctx context.Context, offset, limit int) ([]*models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectEntry+` ORDER BY extracted_at DESC, path LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns the number of successful and failed entries.
func (s *SQLiteJournal) Counts(ctx context.Context) (succeeded, failed int64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN COALESCE(error_kind, '') = '' AND COALESCE(error, '') = '' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN COALESCE(error_kind, '') = '' AND COALESCE(error, '') = '' THEN 0 ELSE 1 END), 0)
		 FROM extractions`,
	).Scan(&succeeded, &failed)
	return succeeded, failed, err
}

// Close closes the database.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}
