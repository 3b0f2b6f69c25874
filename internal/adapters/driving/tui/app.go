package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/views/player"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	styles *styles.Styles
	keymap *keymap.KeyMap

	player    *player.View
	statusBar *status.Bar

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	app := &App{
		ports:     ports,
		styles:    s,
		keymap:    km,
		player:    player.NewView(s),
		statusBar: status.NewBar(s, km),
	}
	app.apply(ports.NowPlaying.View())
	return app, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("nowplaying")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.PlaybackUpdated:
		a.apply(msg.View)
		return a, nil

	case messages.LinkOpened:
		if msg.Err != nil {
			a.statusBar.SetMessage("Could not open browser: " + msg.Err.Error())
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	a.statusBar.SetMessage("")

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(keyStr, a.keymap.Help):
		a.statusBar.ToggleHelp()
	case keymap.Matches(keyStr, a.keymap.Refresh):
		a.ports.NowPlaying.PollNow()
	case keymap.Matches(keyStr, a.keymap.Open):
		return a, a.openLink()
	}
	return a, nil
}

// openLink opens the current track's link, if there is one.
func (a *App) openLink() tea.Cmd {
	url := a.player.Playback().Track.ExternalURL
	if url == "" || a.ports.OpenURL == nil {
		return nil
	}
	open := a.ports.OpenURL
	return func() tea.Msg {
		return messages.LinkOpened{URL: url, Err: open(url)}
	}
}

// apply pushes a published view into the child components.
func (a *App) apply(view domain.PlaybackView) {
	a.player.Update(messages.PlaybackUpdated{View: view})
	a.statusBar.SetPlayback(view.Status, view.Interval)
}

// View implements tea.Model.
func (a *App) View() string {
	body := a.player.View()
	if a.width > 0 && a.height > 1 {
		body = lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, body)
	}
	return body + "\n" + a.statusBar.View()
}

// SetDimensions sets the terminal size for all components.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.player.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}

// Playback returns the view currently displayed.
func (a *App) Playback() domain.PlaybackView {
	return a.player.Playback()
}
