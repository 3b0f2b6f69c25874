package driving

import "github.com/custodia-labs/nowplaying/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings, including environment overrides.
	Get() domain.Settings

	// SetClientID stores the OAuth client identifier.
	SetClientID(clientID string) error

	// SetRedirectURI stores the loopback redirect URI.
	SetRedirectURI(uri string) error

	// SetShowQueue toggles the "up next" lookup.
	SetShowQueue(show bool) error

	// Path returns where settings are persisted.
	Path() string
}
