package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "tripmate"

// SessionClaims is the payload of a persisted session token.
type SessionClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionStore saves the signed-in user to a file as a signed JWT.
type SessionStore struct {
	path   string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionStore creates a store writing to path, signing with secret.
func NewSessionStore(path, secret string, ttl time.Duration) (*SessionStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: session path is required", shared.ErrInvalidConfig)
	}
	if secret == "" {
		return nil, fmt.Errorf("%w: session secret is required", shared.ErrMissingCredentials)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: session ttl must be positive", shared.ErrInvalidConfig)
	}
	return &SessionStore{path: shared.ExpandHome(path), secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Path returns the session file location.
func (s *SessionStore) Path() string {
	return s.path
}

// Save signs a token for cred and writes it, replacing any existing session.
func (s *SessionStore) Save(cred *models.Credential) error {
	now := s.now()
	claims := SessionClaims{
		Name:  cred.DisplayName,
		Email: cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   cred.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(signed), 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load verifies the saved token and returns its credential.
func (s *SessionStore) Load() (*models.Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var claims SessionClaims
	_, err = jwt.ParseWithClaims(strings.TrimSpace(string(data)), &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, shared.ErrSessionExpired
	case err != nil:
		return nil, fmt.Errorf("%w: invalid session token: %v", shared.ErrAuthFailed, err)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: session token has no subject", shared.ErrAuthFailed)
	}

	return &models.Credential{UID: claims.Subject, DisplayName: claims.Name, Email: claims.Email}, nil
}

// Clear removes the session file. A missing file is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
