package driving

import (
	"context"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// Authenticator runs the browser-based login.
type Authenticator interface {
	// Login performs one Authorization Code + PKCE attempt and stores the
	// resulting tokens. The caller bounds the attempt with ctx.
	Login(ctx context.Context) (domain.TokenRecord, error)

	// SetPrompt registers the hook that shows the authorize URL.
	SetPrompt(prompt LoginPrompt)

	// SetBrowserEnabled controls whether Login launches the browser.
	SetBrowserEnabled(enabled bool)
}

// LoginPrompt is told the authorize URL once the listener is ready.
// browserErr is non-nil when the browser was not launched and the user
// has to open the URL by hand.
type LoginPrompt func(authURL string, browserErr error)

// TokenLifecycle gives expiry-aware access to the stored token record.
type TokenLifecycle interface {
	// Current returns the stored record, or false if none is usable.
	Current(ctx context.Context) (domain.TokenRecord, bool)

	// EnsureFresh refreshes the record if it has reached its expiry.
	EnsureFresh(ctx context.Context, record domain.TokenRecord) (domain.TokenRecord, error)

	// ForceRefresh refreshes the record regardless of its expiry.
	ForceRefresh(ctx context.Context, record domain.TokenRecord) (domain.TokenRecord, error)

	// Clear removes the stored record.
	Clear(ctx context.Context) error
}
