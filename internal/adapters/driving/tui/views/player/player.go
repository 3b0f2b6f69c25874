// Package player provides the now-playing card for the TUI.
package player

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

const (
	minBarWidth = 10
	maxBarWidth = 60
)

// View renders the current track, its progress, and the next queued item.
type View struct {
	styles   *styles.Styles
	bar      progress.Model
	playback domain.PlaybackView
	width    int
	height   int
}

// NewView creates a new player view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	bar := progress.New(
		progress.WithSolidFill(string(s.Theme().Accent)),
		progress.WithoutPercentage(),
	)
	bar.Width = maxBarWidth

	return &View{
		styles:   s,
		bar:      bar,
		playback: domain.PlaybackView{Status: domain.StatusLoading},
	}
}

// Update handles messages for the player view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.PlaybackUpdated:
		v.playback = msg.View
	}
	return v, nil
}

// SetDimensions sets the available size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	w := width - 8 // card border and padding
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < minBarWidth {
		w = minBarWidth
	}
	v.bar.Width = w
}

// Playback returns the view being displayed.
func (v *View) Playback() domain.PlaybackView {
	return v.playback
}

// View renders the card.
func (v *View) View() string {
	var b strings.Builder

	if v.playback.Status == domain.StatusPlaying {
		v.renderTrack(&b)
	} else {
		v.renderStatus(&b)
	}

	return v.styles.Card.Render(b.String())
}

func (v *View) renderTrack(b *strings.Builder) {
	t := v.playback.Track

	b.WriteString(v.styles.Track.Render(t.TrackName))
	b.WriteString("\n")
	b.WriteString(v.styles.Artist.Render(t.ArtistName))
	if t.AlbumName != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Album.Render(t.AlbumName))
	}
	b.WriteString("\n\n")

	if line := v.playback.ProgressLine(); line != "" {
		b.WriteString(v.bar.ViewAs(v.playback.Fraction()))
		b.WriteString("\n")
		b.WriteString(v.styles.Text.Render(line))
	}
	if !t.IsPlaying {
		b.WriteString("  ")
		b.WriteString(v.styles.Paused.Render("Paused"))
	}

	if v.playback.Queue.HasNext() {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Dim.Render(v.playback.Queue.String()))
	}
}

func (v *View) renderStatus(b *strings.Builder) {
	status := v.playback.Status

	headline := v.styles.Caution
	switch status {
	case domain.StatusError:
		headline = v.styles.Alert
	case domain.StatusLoading:
		headline = v.styles.Dim
	case domain.StatusNotConfigured, domain.StatusNotLoggedIn, domain.StatusNothingPlaying, domain.StatusPlaying:
	}

	b.WriteString(headline.Render(status.Headline()))
	if hint := status.Hint(); hint != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Dim.Render(hint))
	}
	if status == domain.StatusError && v.playback.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Dim.Render(v.playback.Err.Error()))
	}
}
