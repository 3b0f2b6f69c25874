package tui

import "errors"

// ErrMissingNowPlayingService is returned when the now-playing service is not provided.
var ErrMissingNowPlayingService = errors.New("tui: now playing service is required")
