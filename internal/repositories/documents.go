package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
)

// DocumentRepository stores user documents as JSON rows keyed by path.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new [DocumentRepository] with the given database connection
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get reads the document at path. A missing row yields a snapshot with Exists=false.
func (r *DocumentRepository) Get(ctx context.Context, path string) (*models.Snapshot, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM documents WHERE path = ?", path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query document %s: %v", shared.ErrStore, path, err)
	}

	var value models.UserRecord
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document %s: %v", shared.ErrStore, path, err)
	}
	return &models.Snapshot{Exists: true, Value: value}, nil
}

// Set replaces the document at path, creating it when missing.
func (r *DocumentRepository) Set(ctx context.Context, path string, value models.UserRecord) error {
	if path == "" {
		return fmt.Errorf("%w: document path is required", shared.ErrStore)
	}

	data, err := json.Marshal(value.Normalize())
	if err != nil {
		return fmt.Errorf("%w: failed to encode document %s: %v", shared.ErrStore, path, err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO documents (path, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, path, string(data), now, now); err != nil {
		return fmt.Errorf("%w: failed to write document %s: %v", shared.ErrStore, path, err)
	}
	return nil
}

// Close is a no-op; the database handle is owned by the caller.
func (r *DocumentRepository) Close() error {
	return nil
}
