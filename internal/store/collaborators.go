package store

import (
	"context"

	"github.com/desertthunder/tripmate/internal/models"
)

// Identity signs users in and out.
type Identity interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Credential, error)
	SignInWithPopup(ctx context.Context, provider *models.AuthProvider) (*models.Credential, error)
	CreateUser(ctx context.Context, email, password string) (*models.Credential, error) // CreateUser registers and signs in
	DeleteCurrentUser(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.Credential, error) // CurrentUser reports a persisted session
}

// Documents reads and replaces user documents.
type Documents interface {
	Get(ctx context.Context, path string) (*models.Snapshot, error)
	Set(ctx context.Context, path string, value models.UserRecord) error
}

// Navigator changes the active route.
type Navigator interface {
	Navigate(path string)
}

// Writer persists snapshots in the background. Enqueue is called with the state lock held and must not block.
type Writer interface {
	Enqueue(path string, record models.UserRecord)
	Flush(ctx context.Context) error
}

// RouteHome is the route every auth action returns to.
const RouteHome = "/"
