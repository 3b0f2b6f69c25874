package driving

import (
	"context"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// NowPlayingService polls playback state and publishes views.
type NowPlayingService interface {
	// Start begins polling. The first poll runs immediately.
	Start(ctx context.Context) error

	// Stop cancels outstanding work and stops all timers.
	Stop()

	// PollNow requests an out-of-band poll. It is dropped if one is in flight.
	PollNow()

	// View returns the latest published view.
	View() domain.PlaybackView

	// Subscribe registers fn to receive every published view.
	Subscribe(fn func(domain.PlaybackView))
}

// PlaybackProbe performs a single now-playing request for diagnostics.
type PlaybackProbe interface {
	// Probe refreshes the token if needed and fetches the current track once.
	Probe(ctx context.Context) (domain.ProbeResult, error)
}
