package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// AccountStore is the persistence used by [LocalIdentity].
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetBySubject(ctx context.Context, provider, subject string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

// ProviderProfile is the identity returned by an OAuth provider.
type ProviderProfile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// PopupFlow runs an interactive provider sign-in.
type PopupFlow interface {
	SignIn(ctx context.Context, provider *models.AuthProvider) (*ProviderProfile, error)
}

// LocalIdentity is an identity provider backed by local accounts and a session file.
type LocalIdentity struct {
	accounts AccountStore
	sessions *SessionStore
	popup    PopupFlow
	logger   *log.Logger
}

// NewLocalIdentity creates an identity provider. popup may be nil when no OAuth client is configured.
func NewLocalIdentity(accounts AccountStore, sessions *SessionStore, popup PopupFlow, logger *log.Logger) *LocalIdentity {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalIdentity{accounts: accounts, sessions: sessions, popup: popup, logger: logger}
}

// CreateUser registers an email/password account and signs it in.
func (i *LocalIdentity) CreateUser(ctx context.Context, email, password string) (*models.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", shared.ErrInvalidInput, email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}

	_, err := i.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", shared.ErrAccountExists, email)
	case !errors.Is(err, shared.ErrAccountNotFound):
		return nil, err
	}

	hash, err := shared.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := models.NewAccount(email, displayName(email), models.ProviderPassword)
	account.PasswordHash = hash
	if err := i.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	i.logger.Info("account created", "account", account.ID, "email", email)
	return i.startSession(account)
}

// SignInWithPassword verifies email and password against the stored hash.
func (i *LocalIdentity) SignInWithPassword(ctx context.Context, email, password string) (*models.Credential, error) {
	account, err := i.accounts.GetByEmail(ctx, email)
	if errors.Is(err, shared.ErrAccountNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := shared.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, shared.ErrInvalidCredentials
	}
	return i.startSession(account)
}

// SignInWithPopup runs the provider flow and signs in the linked account, creating it on first use.
func (i *LocalIdentity) SignInWithPopup(ctx context.Context, provider *models.AuthProvider) (*models.Credential, error) {
	if provider == nil || provider.Name == "" {
		return nil, fmt.Errorf("%w: provider is required", shared.ErrInvalidArgument)
	}
	if i.popup == nil {
		return nil, fmt.Errorf("%w: %s sign-in is not configured", shared.ErrMissingCredentials, provider.Name)
	}

	profile, err := i.popup.SignIn(ctx, provider)
	if err != nil {
		return nil, err
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("%w: %s returned no subject", shared.ErrAuthFailed, provider.Name)
	}

	name := profile.Name
	if name == "" {
		name = displayName(profile.Email)
	}

	account, err := i.accounts.GetBySubject(ctx, provider.Name, profile.Subject)
	switch {
	case errors.Is(err, shared.ErrAccountNotFound):
		account = models.NewAccount(profile.Email, name, provider.Name)
		account.Subject = profile.Subject
		if err := i.accounts.Create(ctx, account); err != nil {
			return nil, err
		}
		i.logger.Info("linked provider account", "provider", provider.Name, "account", account.ID)
	case err != nil:
		return nil, err
	case account.DisplayName != name || account.Email != strings.ToLower(profile.Email):
		account.DisplayName = name
		account.Email = strings.ToLower(profile.Email)
		if err := i.accounts.Update(ctx, account); err != nil {
			return nil, err
		}
	}

	return i.startSession(account)
}

// DeleteCurrentUser soft-deletes the signed-in account and ends its session.
func (i *LocalIdentity) DeleteCurrentUser(ctx context.Context) error {
	cred, err := i.sessions.Load()
	if err != nil {
		return err
	}

	if err := i.accounts.Delete(ctx, cred.UID); err != nil && !errors.Is(err, shared.ErrAccountNotFound) {
		return err
	}
	if err := i.sessions.Clear(); err != nil {
		return err
	}

	i.logger.Info("account deleted", "account", cred.UID)
	return nil
}

// CurrentUser returns the signed-in account from the persisted session.
func (i *LocalIdentity) CurrentUser(ctx context.Context) (*models.Credential, error) {
	cred, err := i.sessions.Load()
	if err != nil {
		return nil, err
	}

	account, err := i.accounts.Get(ctx, cred.UID)
	if errors.Is(err, shared.ErrAccountNotFound) {
		i.logger.Warn("session refers to a deleted account", "account", cred.UID)
		if err := i.sessions.Clear(); err != nil {
			return nil, err
		}
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return account.Credential(), nil
}

func (i *LocalIdentity) startSession(account *models.Account) (*models.Credential, error) {
	cred := account.Credential()
	if err := i.sessions.Save(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// displayName derives a readable name from the local part of an email address.
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
