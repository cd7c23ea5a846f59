package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Provider names recorded on accounts.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Account is a local identity provider record. Password accounts carry a hash;
// provider accounts are linked by Provider and Subject.
type Account struct {
	ID           string
	Sequence     int
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     string
	Subject      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewAccount creates an account with timestamps set to now.
func NewAccount(email, displayName, provider string) *Account {
	now := time.Now().UTC()
	return &Account{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: displayName,
		Provider:    provider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the account has an identity and a way to sign in.
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("invalid email %q", a.Email)
	}
	switch a.Provider {
	case ProviderPassword:
		if a.PasswordHash == "" {
			return fmt.Errorf("password hash is required")
		}
	case "":
		return fmt.Errorf("provider is required")
	default:
		if a.Subject == "" {
			return fmt.Errorf("subject is required for provider %s", a.Provider)
		}
	}
	return nil
}

// Deleted reports whether the account has been soft-deleted.
func (a *Account) Deleted() bool {
	return a.DeletedAt != nil
}

// Credential returns the sign-in result for this account.
func (a *Account) Credential() *Credential {
	return &Credential{UID: a.ID, DisplayName: a.DisplayName, Email: a.Email}
}
