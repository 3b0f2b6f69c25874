package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyClientID    = "spotify.client_id"
	keyRedirectURI = "spotify.redirect_uri"
	keyShowQueue   = "poller.show_queue"
)

// EnvClientID overrides the stored client id when set.
const EnvClientID = "NOWPLAYING_CLIENT_ID"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get returns the effective settings.
func (s *SettingsService) Get() domain.Settings {
	settings := domain.DefaultSettings()

	settings.ClientID = strings.TrimSpace(s.configStore.GetString(keyClientID))
	if env := strings.TrimSpace(s.getenv(EnvClientID)); env != "" {
		settings.ClientID = env
	}
	if uri := s.configStore.GetString(keyRedirectURI); uri != "" {
		settings.RedirectURI = uri
	}
	settings.ShowQueue = s.configStore.GetBool(keyShowQueue, settings.ShowQueue)

	return settings
}

// SetClientID stores the OAuth client identifier.
func (s *SettingsService) SetClientID(clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || strings.ContainsAny(clientID, " \t\r\n") {
		return domain.ErrInvalidClientID
	}
	if err := s.configStore.Set(keyClientID, clientID); err != nil {
		return fmt.Errorf("save client id: %w", err)
	}
	return nil
}

// SetRedirectURI stores the loopback redirect URI.
func (s *SettingsService) SetRedirectURI(uri string) error {
	if err := domain.ValidateRedirectURI(uri); err != nil {
		return err
	}
	if err := s.configStore.Set(keyRedirectURI, uri); err != nil {
		return fmt.Errorf("save redirect uri: %w", err)
	}
	return nil
}

// SetShowQueue toggles the "up next" lookup.
func (s *SettingsService) SetShowQueue(show bool) error {
	if err := s.configStore.Set(keyShowQueue, show); err != nil {
		return fmt.Errorf("save show queue: %w", err)
	}
	return nil
}

// Path returns where settings are persisted.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}
