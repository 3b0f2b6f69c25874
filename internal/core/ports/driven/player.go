package driven

import (
	"context"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// PlayerAPI reads playback state for the token's owner.
type PlayerAPI interface {
	// CurrentlyPlaying returns the current track.
	// Returns nil when nothing is playing (HTTP 204).
	// Returns *domain.APIError for non-success responses; a 401 matches domain.ErrUnauthorized.
	CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error)

	// Queue returns the next queued track. An empty queue is not an error.
	Queue(ctx context.Context, accessToken string) (domain.QueueSnapshot, error)
}

// PlayerProbe is implemented by player clients that can report the raw
// HTTP status of a current-track request for diagnostics.
type PlayerProbe interface {
	// ProbeCurrentlyPlaying returns the HTTP status alongside the parsed result.
	ProbeCurrentlyPlaying(ctx context.Context, accessToken string) (int, *domain.NowPlaying, error)
}
