// package repositories provides persistence layer implementations for accounts and documents.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tripmate/internal/models"
)

// DocumentStore is implemented by every user document backend.
type DocumentStore interface {
	Get(ctx context.Context, path string) (*models.Snapshot, error) // Get reads the document at path
	Set(ctx context.Context, path string, value models.UserRecord) error // Set replaces the document at path
	Close() error
}

var (
	_ DocumentStore = (*DocumentRepository)(nil)
	_ DocumentStore = (*BoltDocumentStore)(nil)
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers are NOT exposed in CLI output but used internally for sorting and debugging.
func NextSequence(ctx context.Context, db *sql.DB, table string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	var sequence int
	err = tx.QueryRowContext(ctx, fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}
	return sequence, nil
}
