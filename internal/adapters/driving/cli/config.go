package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the Spotify client id, redirect URI, and display options.

The client id can also be supplied with the NOWPLAYING_CLIENT_ID
environment variable (or a .env file), which takes precedence.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetClientIDCmd = &cobra.Command{
	Use:   "set-client-id <client-id>",
	Short: "Save the Spotify app client id",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetClientID,
}

var configSetRedirectURICmd = &cobra.Command{
	Use:   "set-redirect-uri <uri>",
	Short: "Set the loopback redirect URI",
	Long: `Set the redirect URI registered for your Spotify app.

It must be an http URI on localhost or a loopback address with an
explicit port, for example http://127.0.0.1:5543/callback.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetRedirectURI,
}

var configShowQueueCmd = &cobra.Command{
	Use:   "show-queue <true|false>",
	Short: "Toggle the up-next line",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShowQueue,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetClientIDCmd)
	configCmd.AddCommand(configSetRedirectURICmd)
	configCmd.AddCommand(configShowQueueCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings := settingsService.Get()

	cmd.Println("Configuration")
	cmd.Println("=============")
	cmd.Printf("  File: %s\n", settingsService.Path())
	if settings.ClientID != "" {
		cmd.Printf("  Client ID: %s\n", maskClientID(settings.ClientID))
	} else {
		cmd.Println("  Client ID: (not set)")
	}
	cmd.Printf("  Redirect URI: %s\n", settings.RedirectURI)
	cmd.Printf("  Show queue: %t\n", settings.ShowQueue)

	status := "configured"
	if !settings.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)

	if tokenLifecycle != nil {
		if record, ok := tokenLifecycle.Current(cmd.Context()); ok {
			cmd.Printf("  Login: logged in (access token expires %s)\n", record.Expiry().Local().Format("2006-01-02 15:04"))
		} else {
			cmd.Println("  Login: not logged in")
		}
	}
	return nil
}

func runConfigSetClientID(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetClientID(args[0]); err != nil {
		return fmt.Errorf("failed to save client id: %w", err)
	}
	cmd.Println("Client ID saved.")
	cmd.Println("Run 'nowplaying login' to authorise.")
	return nil
}

func runConfigSetRedirectURI(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetRedirectURI(args[0]); err != nil {
		return fmt.Errorf("failed to save redirect uri: %w", err)
	}
	cmd.Printf("Redirect URI set to %s\n", args[0])
	return nil
}

func runConfigShowQueue(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	show, err := strconv.ParseBool(args[0])
	if err != nil {
		return fmt.Errorf("invalid value %q: use true or false", args[0])
	}
	if err := settingsService.SetShowQueue(show); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("Show queue: %t\n", show)
	return nil
}

// maskClientID shows only the ends of a client id.
func maskClientID(id string) string {
	if len(id) <= 8 {
		return "****"
	}
	return id[:4] + "..." + id[len(id)-4:]
}
