package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
)

const accountColumns = `id, sequence, email, display_name, password_hash, provider, subject, created_at, updated_at, deleted_at`

// AccountRepository persists [models.Account] records for the local identity provider.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account with generated ID and sequence
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	sequence, err := NextSequence(ctx, r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	account.ID = shared.GenerateID()
	account.Sequence = sequence

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`
	_, err = r.db.ExecContext(ctx, query,
		account.ID, account.Sequence, account.Email, account.DisplayName, account.PasswordHash,
		account.Provider, account.Subject, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	return r.queryOne(ctx, "WHERE id = ? AND deleted_at IS NULL", id)
}

// GetByEmail retrieves the live password account registered with email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.queryOne(ctx, "WHERE email = ? AND provider = ? AND deleted_at IS NULL", email, models.ProviderPassword)
}

// GetBySubject retrieves the live account linked to a provider subject
func (r *AccountRepository) GetBySubject(ctx context.Context, provider, subject string) (*models.Account, error) {
	return r.queryOne(ctx, "WHERE provider = ? AND subject = ? AND deleted_at IS NULL", provider, subject)
}

// Update modifies the mutable fields of an existing account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE accounts
		SET email = ?, display_name = ?, password_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, account.Email, account.DisplayName, account.PasswordHash, now, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if err := expectRow(result, account.ID); err != nil {
		return err
	}

	account.UpdatedAt = now
	return nil
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE accounts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return expectRow(result, id)
}

// List retrieves live accounts ordered by sequence, optionally filtered by "email" or "provider"
func (r *AccountRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Account, error) {
	where := "WHERE deleted_at IS NULL"
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		where += " AND email = ?"
		args = append(args, strings.ToLower(email))
	}
	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		where += " AND provider = ?"
		args = append(args, provider)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts "+where+" ORDER BY sequence ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) queryOne(ctx context.Context, where string, args ...any) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts "+where, args...)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	var (
		account   models.Account
		deletedAt sql.NullTime
	)

	err := s.Scan(
		&account.ID, &account.Sequence, &account.Email, &account.DisplayName, &account.PasswordHash,
		&account.Provider, &account.Subject, &account.CreatedAt, &account.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		account.DeletedAt = &deletedAt.Time
	}
	return &account, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, id)
	}
	return nil
}
