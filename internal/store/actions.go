package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
)

// GoogleProvider is the OAuth provider requested by [AppState.LoginWithProvider].
const GoogleProvider = models.ProviderGoogle

// LogoutMessage is the confirmation shown after a successful logout.
const LogoutMessage = "You have been logged out."

// LoginWithPassword signs in with email and password.
func (s *AppState) LoginWithPassword(ctx context.Context, email, password string) error {
	cred, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return s.authFailed("login", err)
	}
	return s.signedIn(ctx, "login", cred)
}

// LoginWithProvider signs in through the Google popup flow, requesting profile and email scopes.
func (s *AppState) LoginWithProvider(ctx context.Context) error {
	provider := models.NewAuthProvider(GoogleProvider)
	provider.AddScope("profile")
	provider.AddScope("email")

	cred, err := s.identity.SignInWithPopup(ctx, provider)
	if err != nil {
		return s.authFailed("provider login", err)
	}
	return s.signedIn(ctx, "provider login", cred)
}

// RegisterAccount creates an account, which also signs the user in.
func (s *AppState) RegisterAccount(ctx context.Context, email, password string) error {
	cred, err := s.identity.CreateUser(ctx, email, password)
	if err != nil {
		return s.authFailed("register", err)
	}
	return s.signedIn(ctx, "register", cred)
}

// Logout deletes the current identity and clears every user-scoped field.
func (s *AppState) Logout(ctx context.Context) error {
	if err := s.identity.DeleteCurrentUser(ctx); err != nil {
		return s.authFailed("logout", err)
	}

	s.SetUser(nil)
	s.InitLiked([]int{})
	s.InitSchedules([]models.ScheduleEntry{})
	s.navigate(RouteHome)
	s.SetAlert(&models.AlertData{
		AlertText:   LogoutMessage,
		ButtonText1: "OK",
		ButtonFunc1: func() { s.SetAlert(nil) },
	})

	s.logger.Info("signed out")
	return nil
}

// Restore adopts a persisted session, if any, and loads its data.
func (s *AppState) Restore(ctx context.Context) error {
	cred, err := s.identity.CurrentUser(ctx)
	if errors.Is(err, shared.ErrNoSession) || errors.Is(err, shared.ErrSessionExpired) {
		s.logger.Debug("no session to restore", "reason", err)
		return nil
	}
	if err != nil {
		return s.authFailed("restore", err)
	}
	if cred == nil {
		return nil
	}

	user := cred.User()
	s.SetUser(&user)
	return s.LoadUserData(ctx)
}

// LoadUserData replaces the liked ids and schedules with the user's stored document.
//
// A missing document yields empty lists. On a read error nothing changes.
func (s *AppState) LoadUserData(ctx context.Context) error {
	user := s.User()
	if user == nil {
		return s.precondition("load user data")
	}

	path := models.UserDocumentPath(user.ID)
	snap, err := s.documents.Get(ctx, path)
	if err != nil {
		return s.storeFailed("load", path, err)
	}

	record := models.UserRecord{}.Normalize()
	if snap != nil && snap.Exists {
		record = snap.Value.Normalize()
	}

	liked := slices.Clone(record.Liked)
	if liked == nil {
		liked = []int{}
	}
	schedules := cloneSchedules(record.Schedules)

	s.mu.Lock()
	if s.user == nil || s.user.ID != user.ID {
		s.mu.Unlock()
		s.logger.Warn("discarding user data for a user no longer signed in", "user", user.ID)
		return nil
	}
	s.liked = liked
	s.schedules = schedules
	s.mu.Unlock()

	s.notify(ChangeInitLiked)
	s.notify(ChangeInitSchedules)
	s.logger.Debug("loaded user data", "user", user.ID, "path", path, "exists", snap != nil && snap.Exists)
	return nil
}

// LikePlace appends id to the liked set and writes the user document through.
func (s *AppState) LikePlace(ctx context.Context, id int) error {
	return s.writeThrough("like place", ChangeAddLiked, func() { s.addLiked(id) })
}

// UnlikePlace removes id from the liked set and writes the user document through.
func (s *AppState) UnlikePlace(ctx context.Context, id int) error {
	return s.writeThrough("unlike place", ChangeRemoveLiked, func() { s.removeLiked(id) })
}

// AddScheduleEntry appends entry to the schedules and writes the user document through.
func (s *AppState) AddScheduleEntry(ctx context.Context, entry models.ScheduleEntry) error {
	return s.writeThrough("add schedule", ChangeAddSchedule, func() { s.addSchedule(entry) })
}

// writeThrough applies mutate and hands the resulting snapshot to the writer under one lock,
// so snapshots reach the writer in mutation order. Enqueue must not block.
func (s *AppState) writeThrough(op string, c Change, mutate func()) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return s.precondition(op)
	}
	mutate()
	path := models.UserDocumentPath(s.user.ID)
	record := s.record()
	if s.writer != nil {
		s.writer.Enqueue(path, record)
	}
	s.mu.Unlock()

	s.notify(c)

	if s.writer == nil {
		return s.storeFailed(op, path, fmt.Errorf("no writer configured"))
	}
	s.logger.Debug("queued write-through", "op", op, "path", path, "liked", len(record.Liked), "schedules", len(record.Schedules))
	return nil
}

func (s *AppState) signedIn(ctx context.Context, op string, cred *models.Credential) error {
	if cred == nil {
		return s.authFailed(op, fmt.Errorf("identity provider returned no user"))
	}

	user := cred.User()
	s.SetUser(&user)
	s.SetModalVisible(false)
	s.InitLiked([]int{})
	s.InitSchedules([]models.ScheduleEntry{})

	// Load failures are already logged; the user stays signed in with empty lists.
	_ = s.LoadUserData(ctx)

	s.navigate(RouteHome)
	s.logger.Info("signed in", "op", op, "user", user.ID)
	return nil
}

func (s *AppState) navigate(path string) {
	if s.navigator != nil {
		s.navigator.Navigate(path)
	}
}

func (s *AppState) authFailed(op string, err error) error {
	wrapped := &AuthError{Op: op, Err: err}
	s.logger.Error("identity provider call failed", "op", op, "err", err)
	return wrapped
}

func (s *AppState) storeFailed(op, path string, err error) error {
	wrapped := &StoreError{Op: op, Path: path, Err: err}
	s.logger.Error("document store call failed", "op", op, "path", path, "err", err)
	return wrapped
}

func (s *AppState) precondition(op string) error {
	return &PreconditionError{Op: op}
}
