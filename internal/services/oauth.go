package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/server"
	"github.com/desertthunder/tripmate/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultPopupTimeout bounds how long [OAuthPopup] waits for the redirect.
const DefaultPopupTimeout = 2 * time.Minute

// OAuthPopupOpts contains configuration for an [OAuthPopup].
type OAuthPopupOpts struct {
	Google  shared.GoogleConfig
	Server  shared.ServerConfig
	Logger  *log.Logger
	Output  io.Writer          // Receives the consent URL when the browser cannot be opened
	Browser func(string) error // Defaults to [shared.OpenBrowser]
	Timeout time.Duration      // Defaults to [DefaultPopupTimeout]
}

// OAuthPopup runs the authorization code flow through a local callback server.
type OAuthPopup struct {
	google  shared.GoogleConfig
	server  shared.ServerConfig
	logger  *log.Logger
	output  io.Writer
	browser func(string) error
	timeout time.Duration
}

// NewOAuthPopup creates a popup flow for the configured Google client.
func NewOAuthPopup(opts OAuthPopupOpts) (*OAuthPopup, error) {
	if !opts.Google.Configured() {
		return nil, fmt.Errorf("%w: google client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	p := &OAuthPopup{
		google:  opts.Google,
		server:  opts.Server,
		logger:  opts.Logger,
		output:  opts.Output,
		browser: opts.Browser,
		timeout: opts.Timeout,
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.output == nil {
		p.output = io.Discard
	}
	if p.browser == nil {
		p.browser = shared.OpenBrowser
	}
	if p.timeout <= 0 {
		p.timeout = DefaultPopupTimeout
	}
	return p, nil
}

// oauthConfig builds the client for provider. redirect overrides the configured redirect URI when set.
func (p *OAuthPopup) oauthConfig(provider *models.AuthProvider, redirect string) *oauth2.Config {
	scopes := []string{"openid"}
	for _, s := range provider.Scopes {
		if s != "openid" {
			scopes = append(scopes, s)
		}
	}
	if redirect == "" {
		redirect = p.google.RedirectURI
	}

	return &oauth2.Config{
		ClientID:     p.google.ClientID,
		ClientSecret: p.google.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.google.AuthURL,
			TokenURL: p.google.TokenURL,
		},
	}
}

// SignIn opens the consent page and waits for the provider to redirect back.
func (p *OAuthPopup) SignIn(ctx context.Context, provider *models.AuthProvider) (*ProviderProfile, error) {
	if provider.Name != models.ProviderGoogle {
		return nil, fmt.Errorf("%w: unsupported provider %q", shared.ErrInvalidArgument, provider.Name)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	addr := net.JoinHostPort(p.server.Host, strconv.Itoa(p.server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	redirect := ""
	if p.google.RedirectURI == "" {
		redirect = "http://" + listener.Addr().String() + server.DefaultCallbackPath
	}
	config := p.oauthConfig(provider, redirect)

	oauthHandler := server.NewOAuthHandler(config, state)
	router := server.NewBasicRouter()
	router.Use(server.Recoverer(p.logger), server.RequestLogger(p.logger))
	router.Handler(oauthHandler)

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		p.logger.Info("starting OAuth callback server", "addr", listener.Addr().String(), "routes", router.Patterns())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	if err := p.browser(authURL); err != nil {
		p.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(p.output, "Open this URL in your browser to sign in:\n%s\n", authURL)
	}

	timeout := time.NewTimer(p.timeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: sign-in timed out after %s", shared.ErrTimeout, p.timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: sign-in cancelled: %v", shared.ErrAuthFailed, ctx.Err())
	}

	if err := result.Error(); err != nil {
		return nil, err
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return p.userInfo(ctx, config, result.Token)
}

func (p *OAuthPopup) userInfo(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.google.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: userinfo status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var profile ProviderProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo has no subject", shared.ErrAuthFailed)
	}
	return &profile, nil
}
