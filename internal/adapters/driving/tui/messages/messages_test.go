package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

func TestPlaybackUpdated(t *testing.T) {
	view := domain.PlaybackView{
		Status: domain.StatusPlaying,
		Track:  domain.NowPlaying{TrackName: "Song"},
	}

	msg := PlaybackUpdated{View: view}

	assert.Equal(t, domain.StatusPlaying, msg.View.Status)
	assert.Equal(t, "Song", msg.View.Track.TrackName)
}

func TestLinkOpened(t *testing.T) {
	msg := LinkOpened{URL: "https://open.spotify.com/track/x", Err: errors.New("no display")}

	assert.Equal(t, "https://open.spotify.com/track/x", msg.URL)
	assert.EqualError(t, msg.Err, "no display")
}
