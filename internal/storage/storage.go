// Package storage persists the inbox journal: one row per source file with the
// outcome of its last extraction.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/cvtext/internal/models"
)

// ErrNotFound is returned by Get when no entry exists for the ID.
var ErrNotFound = errors.New("journal entry not found")

// Journal records extraction outcomes so unchanged files are not extracted again.
type Journal interface {
	// Record inserts or replaces the entry with the same ID.
	Record(ctx context.Context, entry *models.JournalEntry) error
	Get(ctx context.Context, id string) (*models.JournalEntry, error)
	Delete(ctx context.Context, id string) error
	// List returns entries, most recent first.
	List(ctx context.Context, offset, limit int) ([]*models.JournalEntry, error)
	// Counts returns how many recorded extractions succeeded and failed.
	Counts(ctx context.Context) (succeeded, failed int64, err error)

	Close() error
}
