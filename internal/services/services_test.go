package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/repositories"
	"github.com/desertthunder/tripmate/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	sessions, err := NewSessionStore(filepath.Join(t.TempDir(), "session.jwt"), "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	return sessions
}

type stubPopup struct {
	profile *ProviderProfile
	err     error
}

func (s *stubPopup) SignIn(ctx context.Context, provider *models.AuthProvider) (*ProviderProfile, error) {
	return s.profile, s.err
}

func newIdentity(t *testing.T, popup PopupFlow) (*LocalIdentity, *SessionStore) {
	t.Helper()
	sessions := newSessionStore(t)
	accounts := repositories.NewAccountRepository(setupTestDB(t))
	return NewLocalIdentity(accounts, sessions, popup, shared.NewLogger(io.Discard)), sessions
}

func TestSessionStore(t *testing.T) {
	cred := &models.Credential{UID: "u1", DisplayName: "Ada", Email: "ada@example.com"}

	t.Run("constructor validation", func(t *testing.T) {
		tests := []struct {
			name    string
			path    string
			secret  string
			ttl     time.Duration
			wantErr error
		}{
			{name: "missing path", path: "", secret: "s", ttl: time.Hour, wantErr: shared.ErrInvalidConfig},
			{name: "missing secret", path: "x", secret: "", ttl: time.Hour, wantErr: shared.ErrMissingCredentials},
			{name: "zero ttl", path: "x", secret: "s", ttl: 0, wantErr: shared.ErrInvalidConfig},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := NewSessionStore(tt.path, tt.secret, tt.ttl); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("save and load", func(t *testing.T) {
		sessions := newSessionStore(t)
		if err := sessions.Save(cred); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		info, err := os.Stat(sessions.Path())
		if err != nil {
			t.Fatalf("session file missing: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		loaded, err := sessions.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if *loaded != *cred {
			t.Errorf("Load() = %+v, want %+v", loaded, cred)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		if _, err := newSessionStore(t).Load(); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("expired session", func(t *testing.T) {
		sessions := newSessionStore(t)
		sessions.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		if err := sessions.Save(cred); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		sessions.now = time.Now

		if _, err := sessions.Load(); !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("tampered session", func(t *testing.T) {
		sessions := newSessionStore(t)
		if err := sessions.Save(cred); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		other, _ := NewSessionStore(sessions.Path(), "other-secret", time.Hour)
		if _, err := other.Load(); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		sessions := newSessionStore(t)
		sessions.Save(cred)

		if err := sessions.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if err := sessions.Clear(); err != nil {
			t.Errorf("second Clear() should be a no-op, got %v", err)
		}
		if _, err := sessions.Load(); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession after clear, got %v", err)
		}
	})
}

func TestLocalIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("register then sign in", func(t *testing.T) {
		identity, sessions := newIdentity(t, nil)

		created, err := identity.CreateUser(ctx, "Ada@Example.com", "secret1")
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if created.UID == "" || created.Email != "ada@example.com" || created.DisplayName != "ada" {
			t.Errorf("unexpected credential %+v", created)
		}

		current, err := sessions.Load()
		if err != nil || current.UID != created.UID {
			t.Errorf("registration should start a session, got %+v, %v", current, err)
		}

		signedIn, err := identity.SignInWithPassword(ctx, "ada@example.com", "secret1")
		if err != nil {
			t.Fatalf("SignInWithPassword() error = %v", err)
		}
		if signedIn.UID != created.UID {
			t.Errorf("expected uid %s, got %s", created.UID, signedIn.UID)
		}
	})

	t.Run("registration validation", func(t *testing.T) {
		identity, _ := newIdentity(t, nil)
		if _, err := identity.CreateUser(ctx, "a@b.com", "secret1"); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		tests := []struct {
			name     string
			email    string
			password string
			wantErr  error
		}{
			{name: "invalid email", email: "nope", password: "secret1", wantErr: shared.ErrInvalidInput},
			{name: "short password", email: "c@d.com", password: "12345", wantErr: shared.ErrInvalidInput},
			{name: "existing email", email: "A@B.com", password: "secret1", wantErr: shared.ErrAccountExists},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := identity.CreateUser(ctx, tt.email, tt.password); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		identity, _ := newIdentity(t, nil)
		identity.CreateUser(ctx, "a@b.com", "secret1")

		for _, tc := range [][2]string{{"a@b.com", "wrong-pw"}, {"missing@b.com", "secret1"}} {
			if _, err := identity.SignInWithPassword(ctx, tc[0], tc[1]); !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("SignInWithPassword(%q) expected ErrInvalidCredentials, got %v", tc[0], err)
			}
		}
	})

	t.Run("popup sign-in links and reuses accounts", func(t *testing.T) {
		popup := &stubPopup{profile: &ProviderProfile{Subject: "g-1", Email: "grace@example.com", Name: "Grace"}}
		identity, _ := newIdentity(t, popup)
		provider := models.NewAuthProvider(models.ProviderGoogle)

		first, err := identity.SignInWithPopup(ctx, provider)
		if err != nil {
			t.Fatalf("SignInWithPopup() error = %v", err)
		}
		if first.DisplayName != "Grace" {
			t.Errorf("expected display name Grace, got %s", first.DisplayName)
		}

		popup.profile.Name = "Grace H."
		second, err := identity.SignInWithPopup(ctx, provider)
		if err != nil {
			t.Fatalf("SignInWithPopup() error = %v", err)
		}
		if second.UID != first.UID {
			t.Errorf("expected the linked account to be reused")
		}
		if second.DisplayName != "Grace H." {
			t.Errorf("expected updated display name, got %s", second.DisplayName)
		}
	})

	t.Run("popup failures", func(t *testing.T) {
		provider := models.NewAuthProvider(models.ProviderGoogle)

		unconfigured, _ := newIdentity(t, nil)
		if _, err := unconfigured.SignInWithPopup(ctx, provider); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		closed, _ := newIdentity(t, &stubPopup{err: shared.ErrTimeout})
		if _, err := closed.SignInWithPopup(ctx, provider); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}

		anonymous, _ := newIdentity(t, &stubPopup{profile: &ProviderProfile{Email: "x@y.com"}})
		if _, err := anonymous.SignInWithPopup(ctx, provider); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}

		if _, err := anonymous.SignInWithPopup(ctx, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("current user and delete", func(t *testing.T) {
		identity, _ := newIdentity(t, nil)

		if _, err := identity.CurrentUser(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession before sign-in, got %v", err)
		}
		if err := identity.DeleteCurrentUser(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession deleting without a session, got %v", err)
		}

		created, err := identity.CreateUser(ctx, "a@b.com", "secret1")
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		current, err := identity.CurrentUser(ctx)
		if err != nil || current.UID != created.UID {
			t.Fatalf("CurrentUser() = %+v, %v", current, err)
		}

		if err := identity.DeleteCurrentUser(ctx); err != nil {
			t.Fatalf("DeleteCurrentUser() error = %v", err)
		}
		if _, err := identity.CurrentUser(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession after delete, got %v", err)
		}
		if _, err := identity.SignInWithPassword(ctx, "a@b.com", "secret1"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("deleted account should not sign in, got %v", err)
		}
	})

	t.Run("session for a deleted account is discarded", func(t *testing.T) {
		identity, sessions := newIdentity(t, nil)
		sessions.Save(&models.Credential{UID: "ghost"})

		if _, err := identity.CurrentUser(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
		if _, err := sessions.Load(); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("stale session should be cleared, got %v", err)
		}
	})
}

// newProvider serves the token and userinfo endpoints of a fake OAuth provider.
func newProvider(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userinfo))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// redirectingBrowser plays the provider's consent page by calling the redirect URL with a code.
func redirectingBrowser(t *testing.T, code string) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		callback := q.Get("redirect_uri") + "?state=" + url.QueryEscape(q.Get("state")) + "&code=" + code

		go func() {
			resp, err := http.Get(callback)
			if err != nil {
				t.Errorf("callback request failed: %v", err)
				return
			}
			resp.Body.Close()
		}()
		return nil
	}
}

func newPopup(t *testing.T, provider *httptest.Server, browser func(string) error, timeout time.Duration) *OAuthPopup {
	t.Helper()
	popup, err := NewOAuthPopup(OAuthPopupOpts{
		Google: shared.GoogleConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			AuthURL:      provider.URL + "/auth",
			TokenURL:     provider.URL + "/token",
			UserInfoURL:  provider.URL + "/userinfo",
		},
		Server:  shared.ServerConfig{Host: "127.0.0.1", Port: 0},
		Logger:  shared.NewLogger(io.Discard),
		Browser: browser,
		Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewOAuthPopup() error = %v", err)
	}
	return popup
}

func TestOAuthPopup(t *testing.T) {
	ctx := context.Background()
	google := models.NewAuthProvider(models.ProviderGoogle)
	google.AddScope("profile")
	google.AddScope("email")

	t.Run("requires client credentials", func(t *testing.T) {
		if _, err := NewOAuthPopup(OAuthPopupOpts{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("completes the code flow", func(t *testing.T) {
		provider := newProvider(t, `{"sub":"g-1","email":"grace@example.com","name":"Grace"}`)
		popup := newPopup(t, provider, redirectingBrowser(t, "code-1"), 5*time.Second)

		profile, err := popup.SignIn(ctx, google)
		if err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}
		if profile.Subject != "g-1" || profile.Email != "grace@example.com" || profile.Name != "Grace" {
			t.Errorf("unexpected profile %+v", profile)
		}
	})

	t.Run("requests openid with the provider scopes", func(t *testing.T) {
		popup := newPopup(t, newProvider(t, `{}`), nil, time.Second)
		config := popup.oauthConfig(google, "http://127.0.0.1:1/callback")

		if got := strings.Join(config.Scopes, " "); got != "openid profile email" {
			t.Errorf("unexpected scopes %q", got)
		}
	})

	t.Run("times out without a redirect", func(t *testing.T) {
		provider := newProvider(t, `{}`)
		popup := newPopup(t, provider, func(string) error { return nil }, 50*time.Millisecond)

		if _, err := popup.SignIn(ctx, google); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("browser failure prints the consent url", func(t *testing.T) {
		provider := newProvider(t, `{}`)
		var out strings.Builder
		popup := newPopup(t, provider, func(string) error { return errors.New("no browser") }, 50*time.Millisecond)
		popup.output = &out

		popup.SignIn(ctx, google)
		if !strings.Contains(out.String(), provider.URL+"/auth") {
			t.Errorf("expected consent url in output, got %q", out.String())
		}
	})

	t.Run("userinfo without subject", func(t *testing.T) {
		provider := newProvider(t, `{"email":"x@y.com"}`)
		popup := newPopup(t, provider, redirectingBrowser(t, "code-1"), 5*time.Second)

		if _, err := popup.SignIn(ctx, google); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		popup := newPopup(t, newProvider(t, `{}`), nil, time.Second)
		if _, err := popup.SignIn(ctx, models.NewAuthProvider("github")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
