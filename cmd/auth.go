package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// AuthStatus is the JSON shape printed by "auth status --json".
type AuthStatus struct {
	SignedIn  bool   `json:"signed_in"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Liked     int    `json:"liked"`
	Schedules int    `json:"schedules"`
}

// AuthLogin signs in with email and password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if err := app.State.LoginWithPassword(ctx, email, password); err != nil {
		return err
	}
	return r.writeSignedIn(app)
}

// AuthRegister creates an account, which also signs it in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}

	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if err := app.State.RegisterAccount(ctx, email, password); err != nil {
		return err
	}
	return r.writeSignedIn(app)
}

// AuthGoogle signs in through the browser-based Google flow.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if !r.config.Auth.Google.Configured() {
		return fmt.Errorf("%w: set [auth.google] client_id and client_secret", shared.ErrMissingCredentials)
	}

	r.writePlain("Opening the browser to complete sign-in...\n")
	if err := app.State.LoginWithProvider(ctx); err != nil {
		return err
	}
	return r.writeSignedIn(app)
}

// AuthLogout signs out, clearing the local session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if !app.State.IsLoggedIn() {
		return r.writePlain("Not signed in\n")
	}

	if err := app.State.Logout(ctx); err != nil {
		return err
	}

	alert := app.State.Alert()
	if alert != nil {
		r.writePlain("✓ %s\n", alert.AlertText)
		alert.Acknowledge(1)
	}
	return nil
}

// AuthStatus reports the restored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}

	status := AuthStatus{
		SignedIn:  app.State.IsLoggedIn(),
		Liked:     len(app.State.Liked()),
		Schedules: len(app.State.Schedules()),
	}
	if user := app.State.User(); user != nil {
		status.UserID = user.ID
		status.Name = user.Name
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}
	if !status.SignedIn {
		return r.writePlain("Not signed in\n")
	}

	r.writePlain("Signed in as %s (%s)\n", status.Name, status.UserID)
	r.writePlain("Liked places: %d\n", status.Liked)
	r.writePlain("Schedule entries: %d\n", status.Schedules)
	return nil
}

func (r *Runner) writeSignedIn(app *App) error {
	user := app.State.User()
	if user == nil {
		return fmt.Errorf("%w: sign-in did not produce a user", shared.ErrAuthFailed)
	}
	return r.writePlain("✓ Signed in as %s\n", user.Name)
}

// credentials reads --email and --password, prompting for whichever is missing.
func (r *Runner) credentials(cmd *cli.Command) (string, string, error) {
	email := strings.TrimSpace(cmd.String("email"))
	if email == "" {
		line, err := r.prompt("Email: ")
		if err != nil {
			return "", "", err
		}
		email = line
	}
	if email == "" {
		return "", "", fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	password := cmd.String("password")
	if password == "" {
		secret, err := r.promptSecret("Password: ")
		if err != nil {
			return "", "", err
		}
		password = secret
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}
	return email, password, nil
}

func (r *Runner) prompt(label string) (string, error) {
	r.writePlain("%s", label)
	line, err := r.input.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo from a terminal and falls back to a plain line otherwise.
func (r *Runner) promptSecret(label string) (string, error) {
	f, ok := r.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return r.prompt(label)
	}

	r.writePlain("%s", label)
	secret, err := term.ReadPassword(int(f.Fd()))
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}
