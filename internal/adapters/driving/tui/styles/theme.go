// Package styles provides the palette and lipgloss styles of the
// now-playing view.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the colour palette.
type Theme struct {
	Accent  lipgloss.Color // track title and progress fill
	Artist  lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Alert   lipgloss.Color // errors
	Caution lipgloss.Color // paused, transient messages
	Frame   lipgloss.Color // card border
	Bar     lipgloss.Color // status bar background
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#1DB954"),
		Artist:  lipgloss.Color("#89B4FA"),
		Text:    lipgloss.Color("#CDD6F4"),
		Dim:     lipgloss.Color("#6C7086"),
		Alert:   lipgloss.Color("#F38BA8"),
		Caution: lipgloss.Color("#F9E2AF"),
		Frame:   lipgloss.Color("#45475A"),
		Bar:     lipgloss.Color("#181825"),
	}
}

// Styles holds the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Track     lipgloss.Style
	Artist    lipgloss.Style
	Album     lipgloss.Style
	Text      lipgloss.Style
	Dim       lipgloss.Style
	Paused    lipgloss.Style
	Alert     lipgloss.Style
	Caution   lipgloss.Style
	StatusBar lipgloss.Style
	Card      lipgloss.Style
}

// NewStyles derives styles from theme. A nil theme selects DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Track:  lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Artist: lipgloss.NewStyle().Foreground(theme.Artist),
		Album:  lipgloss.NewStyle().Italic(true).Foreground(theme.Dim),
		Text:   lipgloss.NewStyle().Foreground(theme.Text),
		Dim:    lipgloss.NewStyle().Foreground(theme.Dim),
		Paused: lipgloss.NewStyle().Bold(true).Foreground(theme.Caution),

		Alert:   lipgloss.NewStyle().Foreground(theme.Alert),
		Caution: lipgloss.NewStyle().Foreground(theme.Caution),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.Bar).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(1, 2),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Theme returns the palette behind s.
func (s *Styles) Theme() *Theme {
	return s.theme
}
