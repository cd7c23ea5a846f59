package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrAccountExists      = fmt.Errorf("account already exists")
	ErrAccountNotFound    = fmt.Errorf("account not found")
	ErrNoSession          = fmt.Errorf("no active session")
	ErrSessionExpired     = fmt.Errorf("session expired")
	ErrNotSignedIn        = fmt.Errorf("no user is signed in")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Storage errors
	ErrStore       = fmt.Errorf("document store failure")
	ErrQueueClosed = fmt.Errorf("write queue closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
