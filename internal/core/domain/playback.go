package domain

import (
	"fmt"
	"time"
)

// NowPlaying is one observation of the user's current playback.
type NowPlaying struct {
	IsPlaying bool `json:"is_playing"`

	TrackName string `json:"track_name"`
	// ArtistName is every credited artist joined with ", ".
	ArtistName  string `json:"artist_name"`
	AlbumName   string `json:"album_name"`
	ArtURL      string `json:"art_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`

	ProgressMs int `json:"progress_ms"`
	DurationMs int `json:"duration_ms"`
}

// IsZero returns true for the empty snapshot.
func (n NowPlaying) IsZero() bool {
	return n == NowPlaying{}
}

// SameTrack returns true if both snapshots describe the same track.
func (n NowPlaying) SameTrack(other NowPlaying) bool {
	return n.TrackName == other.TrackName && n.ArtistName == other.ArtistName
}

// EstimateProgress interpolates the elapsed position at now for a
// snapshot captured at captured. Paused playback does not advance and
// the result never exceeds the track duration.
func (n NowPlaying) EstimateProgress(captured, now time.Time) int {
	est := n.ProgressMs
	if n.IsPlaying && !captured.IsZero() {
		if elapsed := now.Sub(captured); elapsed > 0 {
			est += int(elapsed / time.Millisecond)
		}
	}
	if est < 0 {
		est = 0
	}
	if n.DurationMs > 0 && est > n.DurationMs {
		est = n.DurationMs
	}
	return est
}

// QueueSnapshot holds the next queued track, if any.
// Both fields are empty when the queue is empty or unavailable.
type QueueSnapshot struct {
	NextTrackName  string `json:"next_track_name,omitempty"`
	NextArtistName string `json:"next_artist_name,omitempty"`
}

// HasNext returns true if there is a next track worth showing.
func (q QueueSnapshot) HasNext() bool {
	return q.NextTrackName != ""
}

// String renders "Next: track - artist" or an empty string.
func (q QueueSnapshot) String() string {
	if !q.HasNext() {
		return ""
	}
	if q.NextArtistName == "" {
		return "Next: " + q.NextTrackName
	}
	return fmt.Sprintf("Next: %s - %s", q.NextTrackName, q.NextArtistName)
}

// PlaybackStatus classifies what the presentation layer should show.
type PlaybackStatus int

// Playback statuses.
const (
	// StatusLoading is shown before the first poll completes.
	StatusLoading PlaybackStatus = iota
	// StatusNotConfigured means no client id has been saved.
	StatusNotConfigured
	// StatusNotLoggedIn means no token record is stored.
	StatusNotLoggedIn
	// StatusNothingPlaying means the API reported no active playback.
	StatusNothingPlaying
	// StatusPlaying means Track holds a current snapshot.
	StatusPlaying
	// StatusError means the last poll failed.
	StatusError
)

// String returns the string representation of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusNotConfigured:
		return "not_configured"
	case StatusNotLoggedIn:
		return "not_logged_in"
	case StatusNothingPlaying:
		return "nothing_playing"
	case StatusPlaying:
		return "playing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Headline returns the primary line shown when no track is displayed.
func (s PlaybackStatus) Headline() string {
	switch s {
	case StatusLoading:
		return "Loading..."
	case StatusNotConfigured:
		return "Not configured"
	case StatusNotLoggedIn:
		return "Not logged in"
	case StatusNothingPlaying:
		return "Nothing playing"
	case StatusError:
		return "Spotify error"
	default:
		return ""
	}
}

// Hint returns the secondary line paired with Headline.
func (s PlaybackStatus) Hint() string {
	switch s {
	case StatusNotConfigured:
		return "Run nowplaying config set-client-id <id>."
	case StatusNotLoggedIn:
		return "Run nowplaying login."
	case StatusNothingPlaying:
		return "Start Spotify on any device."
	case StatusError:
		return "Check login (nowplaying login) or internet."
	default:
		return ""
	}
}

// PlaybackView is the presentation-facing state published by the poller.
type PlaybackView struct {
	Status PlaybackStatus
	Track  NowPlaying
	Queue  QueueSnapshot

	// CapturedAt is when Track was received.
	CapturedAt time.Time
	// EstimatedMs is the interpolated progress at the last update.
	EstimatedMs int
	// Interval is the poll cadence currently armed.
	Interval time.Duration
	// Err is the failure behind StatusError, if any.
	Err error
}

// RemainingMs returns the estimated time left in the track.
func (v PlaybackView) RemainingMs() int {
	left := v.Track.DurationMs - v.EstimatedMs
	if left < 0 {
		return 0
	}
	return left
}

// Fraction returns the estimated progress in [0, 1].
func (v PlaybackView) Fraction() float64 {
	if v.Track.DurationMs <= 0 {
		return 0
	}
	f := float64(v.EstimatedMs) / float64(v.Track.DurationMs)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressLine renders "m:ss / m:ss (m:ss left)".
// It is empty when the duration is unknown.
func (v PlaybackView) ProgressLine() string {
	if v.Track.DurationMs <= 0 {
		return ""
	}
	return fmt.Sprintf("%s / %s (%s left)",
		FormatClock(v.EstimatedMs),
		FormatClock(v.Track.DurationMs),
		FormatClock(v.RemainingMs()))
}

// FormatClock renders milliseconds as m:ss.
func FormatClock(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ProbeResult is the outcome of a one-shot now-playing request.
type ProbeResult struct {
	// Status is the HTTP status of the final request (0 if none completed).
	Status int
	// Track is nil when nothing is playing.
	Track *NowPlaying
}
