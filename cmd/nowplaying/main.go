// Command nowplaying shows the track currently playing on Spotify.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/nowplaying/internal/adapters/driven/browser"
	"github.com/custodia-labs/nowplaying/internal/adapters/driven/config/file"
	authserver "github.com/custodia-labs/nowplaying/internal/adapters/driven/oauth"
	"github.com/custodia-labs/nowplaying/internal/adapters/driven/protect"
	"github.com/custodia-labs/nowplaying/internal/adapters/driven/spotify"
	tokenfile "github.com/custodia-labs/nowplaying/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/nowplaying/internal/adapters/driven/tokenwatch"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/cli"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/oauth"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/services"
)

// logFileName receives verbose logs while the watch view is open.
const logFileName = "watch.log"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// bootstrap wires the adapters for configDir.
func bootstrap(configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dir := filepath.Dir(configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()

	tokenStore := tokenfile.NewTokenStore(dir, protect.NewKeyFileProtector(dir))

	// Without a client id there is nothing to authorise against.
	var server driven.AuthorizationServer
	if settings.IsConfigured() {
		server = authserver.NewServer(settings.ClientID, settings.RedirectURI)
	}

	launcher := browser.NewLauncher()
	player := spotify.NewClient()
	tokens := services.NewTokenManager(tokenStore, server)

	return &cli.Services{
		Settings:   settingsService,
		Auth:       services.NewAuthFlow(settings, server, oauth.NewListener(), launcher, tokenStore),
		Tokens:     tokens,
		NowPlaying: services.NewPoller(tokens, player, settings),
		Probe:      services.NewProbeService(tokens, player, settings),
		Watcher:    tokenwatch.New(tokenStore.Path()),
		OpenURL:    launcher.Open,
		LogPath:    filepath.Join(dir, logFileName),
	}, nil
}
