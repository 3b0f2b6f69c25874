// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// Bar displays poll status and keybinding hints. It is passive; the
// app pushes state into it through the setters.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	status   domain.PlaybackStatus
	interval time.Duration
	message  string
	fullHelp bool
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		status: domain.StatusLoading,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the status and poll cadence.
func (s *Bar) renderLeft() string {
	if s.message != "" {
		return s.styles.Caution.Render(s.message)
	}

	cadence := ""
	if s.interval > 0 {
		cadence = fmt.Sprintf(" · polling every %s", s.interval)
	}

	switch s.status {
	case domain.StatusLoading:
		return s.styles.Dim.Render("Loading...")
	case domain.StatusError:
		return s.styles.Alert.Render("Error" + cadence)
	case domain.StatusPlaying:
		return s.styles.Text.Render("Playing" + cadence)
	case domain.StatusNotConfigured, domain.StatusNotLoggedIn, domain.StatusNothingPlaying:
		return s.styles.Dim.Render(s.status.Headline() + cadence)
	}
	return s.styles.Dim.Render(cadence)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.fullHelp {
		for _, group := range s.keymap.FullHelp() {
			bindings = append(bindings, group...)
		}
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Dim.Render(strings.Join(hints, " | "))
}

// SetPlayback updates the status and cadence shown.
func (s *Bar) SetPlayback(status domain.PlaybackStatus, interval time.Duration) {
	s.status = status
	s.interval = interval
}

// Status returns the current playback status.
func (s *Bar) Status() domain.PlaybackStatus {
	return s.status
}

// SetMessage sets a transient message that replaces the status.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// ToggleHelp switches between short and full key hints.
func (s *Bar) ToggleHelp() {
	s.fullHelp = !s.fullHelp
}

// FullHelp reports whether full key hints are shown.
func (s *Bar) FullHelp() bool {
	return s.fullHelp
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
