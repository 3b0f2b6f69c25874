package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates no client identifier has been set.
	// Login is disabled until one is saved.
	ErrNotConfigured = errors.New("client id not configured")

	// ErrNotLoggedIn indicates no usable token record is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidClientID indicates an empty or malformed client identifier.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidRedirectURI indicates a redirect URI that is not a loopback HTTP address.
	ErrInvalidRedirectURI = errors.New("redirect uri must be an http loopback address")

	// Authorization Errors.

	// ErrAuthCancelled indicates the login attempt was cancelled by the caller.
	ErrAuthCancelled = errors.New("authorization cancelled")

	// ErrAuthTimedOut indicates no redirect arrived before the deadline.
	ErrAuthTimedOut = errors.New("authorization timed out")

	// ErrAuthInvalidCallback indicates the redirect carried no code or a mismatched state.
	ErrAuthInvalidCallback = errors.New("invalid authorization callback")

	// ErrCallbackHandled indicates the listener already accepted its one redirect.
	ErrCallbackHandled = errors.New("callback already handled")

	// API Errors.

	// ErrUnauthorized indicates the API rejected the access token (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthorizedPersisted indicates the API kept rejecting a freshly refreshed token.
	ErrUnauthorizedPersisted = errors.New("unauthorized after token refresh")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Storage Errors.

	// ErrUnprotectFailed indicates sealed data could not be opened.
	// The data is corrupt, truncated, or was sealed with another key.
	ErrUnprotectFailed = errors.New("unprotect failed")
)

// AuthProviderError is returned when the authorization server redirects
// back with an error parameter (for example "access_denied").
type AuthProviderError struct {
	Message string
}

func (e *AuthProviderError) Error() string {
	return fmt.Sprintf("authorization denied by provider: %s", e.Message)
}

// TokenExchangeError is returned when the token endpoint rejects an
// authorization code exchange.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (HTTP %d): %s", e.Status, e.Body)
}

// RefreshError is returned when the token endpoint rejects a refresh grant.
type RefreshError struct {
	Status int
	Body   string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed (HTTP %d): %s", e.Status, e.Body)
}

// APIError carries a non-success response from the player API.
// A 401 matches ErrUnauthorized and a 429 matches ErrRateLimited.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Body)
}

// Is reports whether the status maps onto a sentinel error.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}
