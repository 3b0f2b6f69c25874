package services

import (
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// Poll cadences.
const (
	// IntervalTrackChanged follows a poll that saw a new track.
	IntervalTrackChanged = 3 * time.Second
	// IntervalTrackUnchanged follows a poll that saw the same track.
	IntervalTrackUnchanged = 10 * time.Second
	// IntervalNothingPlaying follows a poll with no active playback.
	IntervalNothingPlaying = 5 * time.Second
	// IntervalNearEnd applies while the track is about to end.
	IntervalNearEnd = 2 * time.Second
	// IntervalError follows a failed poll.
	IntervalError = 10 * time.Second
	// IntervalIdle applies while there is nothing to poll with.
	IntervalIdle = 10 * time.Second
)

const (
	// ProgressTick is the local interpolation interval.
	ProgressTick = time.Second
	// NearEndWindow is how close to the end a track must be to poll faster.
	NearEndWindow = 2 * time.Second
	// PollTimeout bounds every poll.
	PollTimeout = 10 * time.Second
)

// NextInterval picks the cadence after a successful poll that returned next.
// prev is the previously shown track (zero if none) and estimatedMs the
// current progress estimate for next.
func NextInterval(prev, next domain.NowPlaying, estimatedMs int) time.Duration {
	if nearEnd(next, estimatedMs) {
		return IntervalNearEnd
	}
	if prev.IsZero() || !prev.SameTrack(next) {
		return IntervalTrackChanged
	}
	return IntervalTrackUnchanged
}

// nearEnd reports whether estimatedMs is within NearEndWindow of the end.
func nearEnd(track domain.NowPlaying, estimatedMs int) bool {
	if track.DurationMs <= 0 {
		return false
	}
	return estimatedMs >= track.DurationMs-int(NearEndWindow/time.Millisecond)
}
