package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

var watchPlain bool

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the current track",
	Long: `Poll Spotify and show the current track until interrupted.

On a terminal a full-screen view is shown:
  r       - Refresh now
  o       - Open the track in the browser
  ?       - Toggle help
  q / esc - Quit

With --plain, or when output is not a terminal, a line is printed each
time the track or playback state changes.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print plain lines instead of the full-screen view")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if nowPlaying == nil {
		return errors.New("now playing service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if tokenWatcher != nil {
		go func() {
			if err := tokenWatcher.Watch(ctx, nowPlaying.PollNow); err != nil {
				logger.Warn("watch: token watcher: %v", err)
			}
		}()
	}

	if watchPlain || !isTerminal(cmd.OutOrStdout()) {
		return watchPlainLines(ctx, cmd.OutOrStdout())
	}

	restore, err := redirectLogs()
	if err != nil {
		return err
	}
	defer restore()

	return tui.Run(ctx, &tui.Ports{NowPlaying: nowPlaying, OpenURL: openURL})
}

// watchPlainLines prints state changes until ctx is done.
func watchPlainLines(ctx context.Context, w io.Writer) error {
	printer := &linePrinter{w: w}
	nowPlaying.Subscribe(printer.print)
	if err := nowPlaying.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer nowPlaying.Stop()

	<-ctx.Done()
	return nil
}

// redirectLogs sends verbose logs to the log file while the TUI owns the
// terminal. The returned func restores stderr.
func redirectLogs() (func(), error) {
	if !logger.IsVerbose() || logPath == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	logger.SetTimestamps(true)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// linePrinter writes one line per distinct state. Progress-only updates
// are not printed.
type linePrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (p *linePrinter) print(view domain.PlaybackView) {
	line := formatLine(view)

	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	_, _ = fmt.Fprintln(p.w, line)
}

// formatLine renders a view without its progress.
func formatLine(view domain.PlaybackView) string {
	switch view.Status {
	case domain.StatusPlaying:
		t := view.Track
		state := "Playing"
		if !t.IsPlaying {
			state = "Paused"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s: %s - %s", state, t.TrackName, t.ArtistName)
		if t.AlbumName != "" {
			fmt.Fprintf(&b, " (%s)", t.AlbumName)
		}
		if t.DurationMs > 0 {
			fmt.Fprintf(&b, " [%s]", domain.FormatClock(t.DurationMs))
		}
		if view.Queue.HasNext() {
			fmt.Fprintf(&b, " | %s", view.Queue)
		}
		return b.String()
	case domain.StatusError:
		if view.Err != nil {
			return fmt.Sprintf("%s: %v", view.Status.Headline(), view.Err)
		}
		return view.Status.Headline()
	case domain.StatusLoading:
		return view.Status.Headline()
	case domain.StatusNotConfigured, domain.StatusNotLoggedIn, domain.StatusNothingPlaying:
		return view.Status.Headline() + ". " + view.Status.Hint()
	}
	return view.Status.String()
}
