package domain

import (
	"net"
	"net/url"
	"strings"
)

// DefaultRedirectURI is the loopback address registered with the provider.
const DefaultRedirectURI = "http://127.0.0.1:5543/callback"

// Settings holds the user-editable application configuration.
type Settings struct {
	// ClientID is the public OAuth client identifier. Empty disables login.
	ClientID string
	// RedirectURI must match the one registered with the provider byte for byte.
	RedirectURI string
	// ShowQueue controls whether the next queued track is fetched.
	ShowQueue bool
}

// DefaultSettings returns settings with no client id and the default redirect.
func DefaultSettings() Settings {
	return Settings{
		RedirectURI: DefaultRedirectURI,
		ShowQueue:   true,
	}
}

// IsConfigured returns true if login is possible.
func (s Settings) IsConfigured() bool {
	return strings.TrimSpace(s.ClientID) != ""
}

// ValidateRedirectURI checks that uri is an http URL on a loopback host
// with an explicit port.
func ValidateRedirectURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "http" || u.Port() == "" {
		return ErrInvalidRedirectURI
	}
	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return ErrInvalidRedirectURI
	}
	return nil
}
