// Package cli provides the nowplaying command tree.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services bundles the core services the commands call into.
// Commands whose service is nil report that it is not configured.
type Services struct {
	Settings   driving.SettingsService
	Auth       driving.Authenticator
	Tokens     driving.TokenLifecycle
	NowPlaying driving.NowPlayingService
	Probe      driving.PlaybackProbe

	// Watcher triggers an immediate poll when tokens change. Optional.
	Watcher driven.TokenWatcher
	// OpenURL opens links from the watch TUI. Optional.
	OpenURL func(url string) error
	// LogPath receives verbose logs while the watch TUI owns the terminal.
	LogPath string
}

// Bootstrap builds the services for a configuration directory.
// An empty dir selects the default location.
type Bootstrap func(configDir string) (*Services, error)

// Injected services.
var (
	bootstrap       Bootstrap
	settingsService driving.SettingsService
	authenticator   driving.Authenticator
	tokenLifecycle  driving.TokenLifecycle
	nowPlaying      driving.NowPlayingService
	playbackProbe   driving.PlaybackProbe
	tokenWatcher    driven.TokenWatcher
	openURL         func(url string) error
	logPath         string
)

// Global flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "nowplaying",
	Short: "Show what is playing on Spotify",
	Long: `nowplaying shows the track currently playing on your Spotify account.

Get started:
  1. Create an app at https://developer.spotify.com/dashboard with the
     redirect URI ` + domain.DefaultRedirectURI + `
  2. nowplaying config set-client-id <client-id>
  3. nowplaying login
  4. nowplaying watch`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default: user config dir)")
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	authenticator = s.Auth
	tokenLifecycle = s.Tokens
	nowPlaying = s.NowPlaying
	playbackProbe = s.Probe
	tokenWatcher = s.Watcher
	openURL = s.OpenURL
	logPath = s.LogPath
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}
	services, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	return nil
}

// friendlyError rewrites errors the user can act on.
func friendlyError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return errors.New("no client id configured: run nowplaying config set-client-id <id>")
	case errors.Is(err, domain.ErrNotLoggedIn):
		return errors.New("not logged in: run nowplaying login")
	default:
		return err
	}
}
