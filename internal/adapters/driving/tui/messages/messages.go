// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// PlaybackUpdated carries a view published by the poller.
type PlaybackUpdated struct {
	View domain.PlaybackView
}

// LinkOpened reports the outcome of opening the track link.
type LinkOpened struct {
	URL string
	Err error
}
