package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure AuthFlow implements the interface.
var _ driving.Authenticator = (*AuthFlow)(nil)

// Errors reported to the prompt when the browser is not launched.
var (
	errNoBrowser       = errors.New("no browser launcher configured")
	errBrowserDisabled = errors.New("browser launch disabled")
)

// AuthFlow runs the Authorization Code + PKCE login against a loopback redirect.
// Only one Login may run at a time; callers trigger it from explicit user action.
type AuthFlow struct {
	settings domain.Settings
	server   driven.AuthorizationServer
	listener driven.CallbackListener
	browser  driven.BrowserLauncher
	store    driven.TokenStore
	prompt   driving.LoginPrompt
	manual   bool
	now      func() time.Time
}

// authSession is the in-memory state of one login attempt. It is never persisted.
type authSession struct {
	verifier    string
	challenge   string
	state       string
	redirectURI string
	listener    driven.CallbackSession
}

// NewAuthFlow creates an authorization flow coordinator.
// browser may be nil.
func NewAuthFlow(
	settings domain.Settings,
	server driven.AuthorizationServer,
	listener driven.CallbackListener,
	browser driven.BrowserLauncher,
	store driven.TokenStore,
) *AuthFlow {
	return &AuthFlow{
		settings: settings,
		server:   server,
		listener: listener,
		browser:  browser,
		store:    store,
		now:      time.Now,
	}
}

// SetPrompt registers the hook that shows the authorize URL to the user.
func (f *AuthFlow) SetPrompt(prompt driving.LoginPrompt) {
	f.prompt = prompt
}

// SetBrowserEnabled controls whether Login launches the browser.
func (f *AuthFlow) SetBrowserEnabled(enabled bool) {
	f.manual = !enabled
}

// Login performs one login attempt bounded by ctx and stores the tokens.
func (f *AuthFlow) Login(ctx context.Context) (domain.TokenRecord, error) {
	if !f.settings.IsConfigured() || f.server == nil {
		return domain.TokenRecord{}, domain.ErrNotConfigured
	}

	logger.Section("Authorization")

	session, err := f.begin()
	if err != nil {
		return domain.TokenRecord{}, err
	}

	// The listener must be up before the browser can be redirected to it.
	session.listener, err = f.listener.Listen(session.redirectURI)
	if err != nil {
		return domain.TokenRecord{}, fmt.Errorf("start callback listener: %w", err)
	}
	defer func() {
		if cerr := session.listener.Close(); cerr != nil {
			logger.Warn("auth: close callback listener: %v", cerr)
		}
	}()
	logger.Debug("auth: listening on %s", session.redirectURI)

	authURL := f.server.AuthCodeURL(session.state, session.challenge)
	f.launch(authURL)

	params, err := session.listener.Await(ctx, func(p driven.CallbackParams) error {
		return validateCallback(p, session.state)
	})
	if err != nil {
		return domain.TokenRecord{}, authContextError(ctx, err, "await callback")
	}
	if err := validateCallback(params, session.state); err != nil {
		logger.Debug("auth: rejected callback: %v", err)
		return domain.TokenRecord{}, err
	}

	grant, err := f.server.ExchangeCode(ctx, params.Code, session.verifier)
	if err != nil {
		return domain.TokenRecord{}, authContextError(ctx, err, "exchange code")
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return domain.TokenRecord{}, &domain.TokenExchangeError{
			Status: 200,
			Body:   "token response is missing access_token or refresh_token",
		}
	}

	record := domain.NewTokenRecord(grant, f.now())
	if err := f.store.Save(ctx, record); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("save tokens: %w", err)
	}
	logger.Info("auth: login complete, token expires %s", record.Expiry().Format(time.RFC3339))
	return record, nil
}

// begin generates the PKCE pair and state nonce for a new attempt.
func (f *AuthFlow) begin() (*authSession, error) {
	verifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	return &authSession{
		verifier:    verifier,
		challenge:   generateCodeChallenge(verifier),
		state:       state,
		redirectURI: f.settings.RedirectURI,
	}, nil
}

// launch opens the browser and reports the URL. A launch failure does not
// stop the attempt; the user can still navigate manually.
func (f *AuthFlow) launch(authURL string) {
	var browserErr error
	switch {
	case f.manual:
		browserErr = errBrowserDisabled
	case f.browser == nil:
		browserErr = errNoBrowser
	default:
		browserErr = f.browser.Open(authURL)
	}
	if browserErr != nil && !f.manual {
		logger.Warn("auth: open browser: %v", browserErr)
	}
	if f.prompt != nil {
		f.prompt(authURL, browserErr)
	}
}

// validateCallback checks the redirect parameters against the issued state.
func validateCallback(p driven.CallbackParams, expectedState string) error {
	if p.Error != "" {
		msg := p.Error
		if p.ErrorDescription != "" {
			msg = fmt.Sprintf("%s: %s", p.Error, p.ErrorDescription)
		}
		return &domain.AuthProviderError{Message: msg}
	}
	if p.State != expectedState {
		return fmt.Errorf("%w: state mismatch", domain.ErrAuthInvalidCallback)
	}
	if p.Code == "" {
		return fmt.Errorf("%w: missing code", domain.ErrAuthInvalidCallback)
	}
	return nil
}

// authContextError maps context termination onto the auth taxonomy.
func authContextError(ctx context.Context, err error, op string) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return domain.ErrAuthTimedOut
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return domain.ErrAuthCancelled
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
