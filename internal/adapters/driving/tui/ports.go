// Package tui provides an interactive terminal user interface for nowplaying.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
)

// Ports aggregates what the TUI needs from the rest of the application.
type Ports struct {
	// NowPlaying publishes playback views and accepts refresh requests.
	NowPlaying driving.NowPlayingService

	// OpenURL opens a link in the browser. Optional.
	OpenURL func(url string) error
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.NowPlaying == nil {
		return ErrMissingNowPlayingService
	}
	return nil
}
