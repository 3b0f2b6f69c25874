package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

func TestLogin_Success(t *testing.T) {
	auth := &mockAuthenticator{
		record:    domain.TokenRecord{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour).Unix()},
		promptURL: "https://accounts.spotify.com/authorize?x=1",
	}
	useServices(t, &Services{Auth: auth})

	start := time.Now()
	out, err := executeCommand(t, "login")

	require.NoError(t, err)
	assert.True(t, auth.browserEnabled)
	assert.Contains(t, out, "Opening your browser")
	assert.Contains(t, out, "https://accounts.spotify.com/authorize?x=1")
	assert.Contains(t, out, "Logged in.")
	assert.WithinDuration(t, start.Add(defaultLoginTimeout), auth.deadline, 5*time.Second)
}

func TestLogin_NoBrowserAndTimeoutFlags(t *testing.T) {
	auth := &mockAuthenticator{
		record:    domain.TokenRecord{AccessToken: "a", RefreshToken: "r"},
		promptURL: "https://accounts.spotify.com/authorize?x=1",
		promptErr: errors.New("browser launch disabled"),
	}
	useServices(t, &Services{Auth: auth})

	start := time.Now()
	out, err := executeCommand(t, "login", "--no-browser", "--timeout", "30s")

	require.NoError(t, err)
	assert.False(t, auth.browserEnabled)
	assert.Contains(t, out, "Open this URL in your browser")
	assert.Contains(t, out, "timeout 30s")
	assert.WithinDuration(t, start.Add(30*time.Second), auth.deadline, 5*time.Second)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timed out", domain.ErrAuthTimedOut, "login timed out after 3m0s"},
		{"cancelled", domain.ErrAuthCancelled, "login cancelled"},
		{"denied", &domain.AuthProviderError{Message: "access_denied"}, "login failed: access_denied"},
		{"exchange", fmt.Errorf("exchange code: %w", &domain.TokenExchangeError{Status: 400}), "HTTP 400"},
		{"not configured", domain.ErrNotConfigured, "config set-client-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useServices(t, &Services{Auth: &mockAuthenticator{err: tt.err}})

			_, err := executeCommand(t, "login")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLogin_NoService(t *testing.T) {
	useServices(t, nil)

	_, err := executeCommand(t, "login")

	assert.EqualError(t, err, "authenticator not configured")
}

func TestLogout(t *testing.T) {
	tokens := &mockTokenLifecycle{loggedIn: true}
	useServices(t, &Services{Tokens: tokens})

	out, err := executeCommand(t, "logout")

	require.NoError(t, err)
	assert.True(t, tokens.cleared)
	assert.Contains(t, out, "Logged out.")
}

func TestLogout_Error(t *testing.T) {
	useServices(t, &Services{Tokens: &mockTokenLifecycle{clearErr: errors.New("permission denied")}})

	_, err := executeCommand(t, "logout")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove tokens: permission denied")
}
