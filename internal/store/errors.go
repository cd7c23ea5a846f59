package store

import (
	"fmt"

	"github.com/desertthunder/tripmate/internal/shared"
)

// AuthError reports a failure from the identity provider.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, shared.ErrAuthFailed, e.Err)
}

// Unwrap exposes both the provider error and [shared.ErrAuthFailed].
func (e *AuthError) Unwrap() []error {
	return []error{shared.ErrAuthFailed, e.Err}
}

// StoreError reports a failure reading or writing a user document.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the store error and [shared.ErrStore].
func (e *StoreError) Unwrap() []error {
	return []error{shared.ErrStore, e.Err}
}

// PreconditionError reports a user-scoped action invoked while logged out.
type PreconditionError struct {
	Op string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, shared.ErrNotSignedIn)
}

func (e *PreconditionError) Unwrap() error {
	return shared.ErrNotSignedIn
}
