package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"go.etcd.io/bbolt"
)

const documentsBucket = "documents"

// BoltDocumentStore stores user documents in a bbolt file, one key per path.
type BoltDocumentStore struct {
	db *bbolt.DB
}

// OpenBoltDocumentStore opens (or creates) the bbolt file at path.
func OpenBoltDocumentStore(path string) (*BoltDocumentStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: bolt path is required", shared.ErrInvalidConfig)
	}

	db, err := bbolt.Open(filepath.Clean(path), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(documentsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents bucket: %w", err)
	}

	return &BoltDocumentStore{db: db}, nil
}

// Get reads the document at path. A missing key yields a snapshot with Exists=false.
func (s *BoltDocumentStore) Get(ctx context.Context, path string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStore, err)
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(documentsBucket)).Get([]byte(path)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read document %s: %v", shared.ErrStore, path, err)
	}
	if raw == nil {
		return &models.Snapshot{}, nil
	}

	var value models.UserRecord
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document %s: %v", shared.ErrStore, path, err)
	}
	return &models.Snapshot{Exists: true, Value: value}, nil
}

// Set replaces the document at path.
func (s *BoltDocumentStore) Set(ctx context.Context, path string, value models.UserRecord) error {
	if path == "" {
		return fmt.Errorf("%w: document path is required", shared.ErrStore)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStore, err)
	}

	data, err := json.Marshal(value.Normalize())
	if err != nil {
		return fmt.Errorf("%w: failed to encode document %s: %v", shared.ErrStore, path, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(documentsBucket)).Put([]byte(path), data)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to write document %s: %v", shared.ErrStore, path, err)
	}
	return nil
}

// Close closes the underlying bbolt file.
func (s *BoltDocumentStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
