package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// probeTimeout bounds the one-shot request.
const probeTimeout = 10 * time.Second

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Fetch the current track once",
	Long: `Fetch the current track once and print the HTTP status of the request.

Useful for checking the login and connectivity without starting the watcher.`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)
}

func runNow(cmd *cobra.Command, _ []string) error {
	if playbackProbe == nil {
		return errors.New("playback service not configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
	defer cancel()

	res, err := playbackProbe.Probe(ctx)
	if res.Status != 0 {
		cmd.Printf("HTTP %d\n", res.Status)
	}
	if err != nil {
		return friendlyError(err)
	}

	if res.Track == nil {
		cmd.Println(domain.StatusNothingPlaying.Headline())
		return nil
	}
	printTrack(cmd, *res.Track)
	return nil
}

func printTrack(cmd *cobra.Command, t domain.NowPlaying) {
	state := "Playing"
	if !t.IsPlaying {
		state = "Paused"
	}
	cmd.Printf("  Track:   %s\n", t.TrackName)
	cmd.Printf("  Artists: %s\n", t.ArtistName)
	if t.AlbumName != "" {
		cmd.Printf("  Album:   %s\n", t.AlbumName)
	}
	if t.DurationMs > 0 {
		cmd.Printf("  %s: %s / %s\n", state, domain.FormatClock(t.ProgressMs), domain.FormatClock(t.DurationMs))
	}
	if t.ExternalURL != "" {
		cmd.Printf("  Link:    %s\n", t.ExternalURL)
	}
	if t.ArtURL != "" {
		cmd.Printf("  Art:     %s\n", t.ArtURL)
	}
}
