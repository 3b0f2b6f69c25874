package driven

import (
	"context"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// AuthorizationServer talks to the provider's authorize and token endpoints
// for the Authorization Code + PKCE and refresh grants.
type AuthorizationServer interface {
	// AuthCodeURL builds the browser URL for the authorize request.
	AuthCodeURL(state, codeChallenge string) string

	// ExchangeCode trades an authorization code for tokens.
	// Returns *domain.TokenExchangeError on a non-success response.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (domain.TokenGrant, error)

	// Refresh performs the refresh-token grant.
	// Returns *domain.RefreshError on a non-success response.
	Refresh(ctx context.Context, refreshToken string) (domain.TokenGrant, error)
}
