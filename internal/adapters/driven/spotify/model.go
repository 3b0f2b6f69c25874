package spotify

import (
	"strings"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// artist is the simplified artist object.
type artist struct {
	Name string `json:"name"`
}

// trackItem represents the track object from the Spotify API.
type trackItem struct {
	Name         string   `json:"name"`
	DurationMs   int      `json:"duration_ms"`
	Artists      []artist `json:"artists"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// currentlyPlaying represents the currently playing object from the Spotify API.
// Item is nil when playback has no track item (for example during an ad).
type currentlyPlaying struct {
	IsPlaying  bool       `json:"is_playing"`
	ProgressMs int        `json:"progress_ms"`
	Item       *trackItem `json:"item"`
}

// queueResponse is the body of GET /me/player/queue.
type queueResponse struct {
	Queue []trackItem `json:"queue"`
}

// joinArtists renders artist names separated by ", ".
func joinArtists(artists []artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// toNowPlaying maps the API payload onto the domain snapshot.
// Returns nil when there is no track item.
func (c currentlyPlaying) toNowPlaying() *domain.NowPlaying {
	if c.Item == nil {
		return nil
	}
	np := &domain.NowPlaying{
		IsPlaying:   c.IsPlaying,
		TrackName:   c.Item.Name,
		ArtistName:  joinArtists(c.Item.Artists),
		AlbumName:   c.Item.Album.Name,
		ExternalURL: c.Item.ExternalURLs.Spotify,
		ProgressMs:  c.ProgressMs,
		DurationMs:  c.Item.DurationMs,
	}
	// The first image is the largest.
	if len(c.Item.Album.Images) > 0 {
		np.ArtURL = c.Item.Album.Images[0].URL
	}
	return np
}

// toQueueSnapshot takes the first queued item, if it has a name.
func (q queueResponse) toQueueSnapshot() domain.QueueSnapshot {
	if len(q.Queue) == 0 || q.Queue[0].Name == "" {
		return domain.QueueSnapshot{}
	}
	return domain.QueueSnapshot{
		NextTrackName:  q.Queue[0].Name,
		NextArtistName: joinArtists(q.Queue[0].Artists),
	}
}
