// Package oauth implements the provider's authorize and token endpoints
// for the Authorization Code + PKCE and refresh grants.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
)

// Ensure Server implements the interface.
var _ driven.AuthorizationServer = (*Server)(nil)

// Scopes are the read-only playback scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadPlaybackState,
}

// requestTimeout bounds each token endpoint call.
const requestTimeout = 10 * time.Second

// Server is a public (secretless) PKCE client for the token endpoint.
type Server struct {
	config *oauth2.Config
	client *http.Client
}

// Option configures a Server.
type Option func(*Server)

// WithEndpoint overrides the authorize and token URLs.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(s *Server) {
		s.config.Endpoint.AuthURL = authURL
		s.config.Endpoint.TokenURL = tokenURL
	}
}

// WithHTTPClient overrides the HTTP client used for token calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.client = client
	}
}

// NewServer creates a token endpoint client for clientID. redirectURI is
// sent unchanged in both the authorize URL and the code exchange.
func NewServer(clientID, redirectURI string, opts ...Option) *Server {
	s := &Server{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
				// Public client: client_id goes in the form body, no secret.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthCodeURL builds the browser URL for the authorize request.
func (s *Server) AuthCodeURL(state, codeChallenge string) string {
	return s.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
	)
}

// ExchangeCode trades an authorization code for tokens.
func (s *Server) ExchangeCode(ctx context.Context, code, codeVerifier string) (domain.TokenGrant, error) {
	tok, err := s.config.Exchange(s.withClient(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return domain.TokenGrant{}, &domain.TokenExchangeError{Status: statusOf(re), Body: string(re.Body)}
		}
		return domain.TokenGrant{}, fmt.Errorf("token request: %w", err)
	}
	return grantFrom(tok), nil
}

// Refresh performs the refresh-token grant.
func (s *Server) Refresh(ctx context.Context, refreshToken string) (domain.TokenGrant, error) {
	src := s.config.TokenSource(s.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return domain.TokenGrant{}, &domain.RefreshError{Status: statusOf(re), Body: string(re.Body)}
		}
		return domain.TokenGrant{}, fmt.Errorf("refresh request: %w", err)
	}
	grant := grantFrom(tok)
	// The token source copies the old refresh token forward when the
	// provider does not rotate it; report that as "not returned".
	if grant.RefreshToken == refreshToken {
		grant.RefreshToken = ""
	}
	return grant, nil
}

func (s *Server) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.client)
}

func grantFrom(tok *oauth2.Token) domain.TokenGrant {
	expiresIn := time.Duration(tok.ExpiresIn) * time.Second
	if expiresIn <= 0 && !tok.Expiry.IsZero() {
		expiresIn = time.Until(tok.Expiry).Round(time.Second)
	}
	return domain.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}
}

func statusOf(re *oauth2.RetrieveError) int {
	if re.Response == nil {
		return 0
	}
	return re.Response.StatusCode
}
