package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// defaultLoginTimeout bounds how long login waits for the browser redirect.
const defaultLoginTimeout = 3 * time.Minute

var (
	loginTimeout   time.Duration
	loginNoBrowser bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Spotify",
	Long: `Log in with your Spotify account using the browser.

A temporary listener on the configured redirect URI receives the
authorisation code, which is exchanged for tokens that are stored
encrypted in the configuration directory.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify tokens",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", defaultLoginTimeout, "How long to wait for the browser login")
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the login URL instead of opening a browser")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if authenticator == nil {
		return errors.New("authenticator not configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	authenticator.SetBrowserEnabled(!loginNoBrowser)
	authenticator.SetPrompt(func(authURL string, browserErr error) {
		if browserErr != nil {
			cmd.Println("Open this URL in your browser to log in:")
		} else {
			cmd.Println("Opening your browser to log in. If it does not open, visit:")
		}
		cmd.Println()
		cmd.Printf("  %s\n", authURL)
		cmd.Println()
		cmd.Printf("Waiting for authorisation (timeout %s)...\n", loginTimeout)
	})

	record, err := authenticator.Login(ctx)
	if err != nil {
		return loginError(err)
	}

	cmd.Printf("Logged in. Access token valid until %s.\n", record.Expiry().Local().Format("15:04"))
	return nil
}

// loginError rewrites login failures for the terminal.
func loginError(err error) error {
	var providerErr *domain.AuthProviderError
	var exchangeErr *domain.TokenExchangeError
	switch {
	case errors.Is(err, domain.ErrAuthTimedOut):
		return fmt.Errorf("login timed out after %s", loginTimeout)
	case errors.Is(err, domain.ErrAuthCancelled):
		return errors.New("login cancelled")
	case errors.As(err, &providerErr):
		return fmt.Errorf("login failed: %s", providerErr.Message)
	case errors.As(err, &exchangeErr):
		return fmt.Errorf("login failed: token exchange returned HTTP %d", exchangeErr.Status)
	default:
		return friendlyError(err)
	}
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if tokenLifecycle == nil {
		return errors.New("token service not configured")
	}
	if err := tokenLifecycle.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to remove tokens: %w", err)
	}
	cmd.Println("Logged out. Stored tokens removed.")
	return nil
}
