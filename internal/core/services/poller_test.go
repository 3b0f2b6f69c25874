package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nowplaying/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

type pollerFixture struct {
	poller *Poller
	player *mockPlayer
	server *mockAuthServer
	store  *memory.TokenStore
	clock  *fakeClock
}

func newPollerFixture(t *testing.T, loggedIn bool) *pollerFixture {
	t.Helper()
	clock := newFakeClock(time.Unix(1_700_000_000, 0))
	store := memory.NewTokenStore()
	server := &mockAuthServer{}
	tokens := NewTokenManager(store, server)
	tokens.now = clock.Now

	if loggedIn {
		require.NoError(t, store.Save(context.Background(), domain.TokenRecord{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    clock.Now().Unix() + 3600,
		}))
	}

	settings := domain.DefaultSettings()
	settings.ClientID = "client"
	player := &mockPlayer{}
	poller := NewPoller(tokens, player, settings)
	poller.now = clock.Now

	return &pollerFixture{poller: poller, player: player, server: server, store: store, clock: clock}
}

func playing(name string, progress, duration int) *domain.NowPlaying {
	return &domain.NowPlaying{
		IsPlaying:  true,
		TrackName:  name,
		ArtistName: "Artist",
		AlbumName:  "Album",
		ProgressMs: progress,
		DurationMs: duration,
	}
}

func unauthorized() error {
	return &domain.APIError{Status: http.StatusUnauthorized, Body: `{"error":{"status":401}}`}
}

func TestPoller_Tick_NotConfigured(t *testing.T) {
	f := newPollerFixture(t, true)
	f.poller.settings.ClientID = ""

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeNotConfigured, outcome)
	assert.Equal(t, domain.StatusNotConfigured, f.poller.View().Status)
	assert.Equal(t, 0, f.player.Calls())
}

func TestPoller_Tick_NotLoggedInSkipsNetwork(t *testing.T) {
	f := newPollerFixture(t, false)

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeNotLoggedIn, outcome)
	assert.Equal(t, domain.StatusNotLoggedIn, f.poller.View().Status)
	assert.Equal(t, 0, f.player.Calls())
	assert.Equal(t, 0, f.server.RefreshCalls())
}

func TestPoller_Tick_NothingPlaying(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}, {track: nil}}
	f.poller.Tick(context.Background())

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeNothingPlaying, outcome)
	view := f.poller.View()
	assert.Equal(t, domain.StatusNothingPlaying, view.Status)
	assert.True(t, view.Track.IsZero(), "snapshot must be reset")
	assert.Equal(t, IntervalNothingPlaying, view.Interval)
}

func TestPoller_Tick_Cadence(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{
		{track: playing("A", 10000, 180000)},
		{track: playing("A", 20000, 180000)},
		{track: playing("B", 0, 180000)},
		{track: playing("B", 178500, 180000)},
	}

	expected := []time.Duration{IntervalTrackChanged, IntervalTrackUnchanged, IntervalTrackChanged, IntervalNearEnd}
	for i, want := range expected {
		assert.Equal(t, OutcomePlaying, f.poller.Tick(context.Background()))
		assert.Equal(t, want, f.poller.View().Interval, "poll %d", i+1)
	}
}

func TestPoller_Tick_ChangeAfterNothingPlaying(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{
		{track: playing("A", 10000, 180000)},
		{track: nil},
		{track: playing("A", 10000, 180000)},
	}

	f.poller.Tick(context.Background())
	f.poller.Tick(context.Background())
	f.poller.Tick(context.Background())

	assert.Equal(t, IntervalTrackChanged, f.poller.View().Interval)
}

func TestPoller_Tick_RetriesOnceAfterUnauthorized(t *testing.T) {
	f := newPollerFixture(t, true)
	f.server.refreshGrants = []domain.TokenGrant{{AccessToken: "access-2", ExpiresIn: time.Hour}}
	f.player.responses = []playerResponse{
		{err: unauthorized()},
		{track: playing("A", 0, 1000)},
	}

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomePlaying, outcome)
	assert.Equal(t, 1, f.server.RefreshCalls())
	assert.Equal(t, []string{"access-1", "access-2"}, f.player.Tokens())

	stored, ok := f.store.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestPoller_Tick_UnauthorizedPersisted(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{err: unauthorized()}, {err: unauthorized()}, {track: playing("A", 0, 1)}}

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeUnauthorizedPersisted, outcome)
	assert.Equal(t, 2, f.player.Calls(), "no third attempt")
	assert.Equal(t, 1, f.server.RefreshCalls())

	view := f.poller.View()
	assert.Equal(t, domain.StatusError, view.Status)
	assert.ErrorIs(t, view.Err, domain.ErrUnauthorizedPersisted)
	assert.ErrorIs(t, view.Err, domain.ErrUnauthorized)
}

func TestPoller_Tick_ExpiredTokenRefreshedFirst(t *testing.T) {
	f := newPollerFixture(t, true)
	f.clock.Advance(2 * time.Hour)
	f.server.refreshGrants = []domain.TokenGrant{{AccessToken: "access-2", ExpiresIn: time.Hour}}
	f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomePlaying, outcome)
	assert.Equal(t, 1, f.server.RefreshCalls())
	assert.Equal(t, []string{"access-2"}, f.player.Tokens())
}

func TestPoller_Tick_RefreshFailureDegrades(t *testing.T) {
	f := newPollerFixture(t, true)
	f.clock.Advance(2 * time.Hour)
	f.server.refreshErr = &domain.RefreshError{Status: 400, Body: "invalid_grant"}

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, 0, f.player.Calls())
	var refreshErr *domain.RefreshError
	assert.True(t, errors.As(f.poller.View().Err, &refreshErr))
}

func TestPoller_Tick_TransientErrorDegrades(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{
		{track: playing("A", 0, 180000)},
		{err: errors.New("connection reset")},
	}
	f.poller.Tick(context.Background())

	outcome := f.poller.Tick(context.Background())

	assert.Equal(t, OutcomeError, outcome)
	view := f.poller.View()
	assert.Equal(t, domain.StatusError, view.Status)
	assert.True(t, view.Track.IsZero())
	assert.Equal(t, IntervalError, view.Interval)
	assert.Equal(t, 2, f.player.Calls(), "transient errors are not retried")
}

func TestPoller_Tick_Queue(t *testing.T) {
	t.Run("next track shown", func(t *testing.T) {
		f := newPollerFixture(t, true)
		f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}
		f.player.queue = domain.QueueSnapshot{NextTrackName: "B", NextArtistName: "Artist"}

		f.poller.Tick(context.Background())

		assert.True(t, f.poller.View().Queue.HasNext())
	})

	t.Run("empty queue", func(t *testing.T) {
		f := newPollerFixture(t, true)
		f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}

		assert.Equal(t, OutcomePlaying, f.poller.Tick(context.Background()))

		queue := f.poller.View().Queue
		assert.Empty(t, queue.NextTrackName)
		assert.Empty(t, queue.NextArtistName)
		assert.False(t, queue.HasNext())
	})

	t.Run("queue failure does not fail the tick", func(t *testing.T) {
		f := newPollerFixture(t, true)
		f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}
		f.player.queue = domain.QueueSnapshot{NextTrackName: "stale"}
		f.player.queueErr = errors.New("boom")

		assert.Equal(t, OutcomePlaying, f.poller.Tick(context.Background()))
		assert.False(t, f.poller.View().Queue.HasNext())
	})

	t.Run("queue disabled", func(t *testing.T) {
		f := newPollerFixture(t, true)
		f.poller.settings.ShowQueue = false
		f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}

		f.poller.Tick(context.Background())

		assert.Equal(t, int32(0), f.player.queueCalls.Load())
	})
}

func TestPoller_Tick_AtMostOneInFlight(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}
	f.player.block = make(chan struct{})
	f.player.entered = make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.poller.Tick(context.Background())
	}()
	<-f.player.entered

	for i := 0; i < 5; i++ {
		assert.Equal(t, OutcomeSkipped, f.poller.Tick(context.Background()))
	}

	close(f.player.block)
	wg.Wait()

	assert.Equal(t, 1, f.player.Calls())
	assert.Equal(t, int32(1), f.player.maxInFlight.Load())
}

func TestPoller_ProgressInterpolation(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 60000, 180000)}}
	f.poller.Tick(context.Background())

	f.clock.Advance(5 * time.Second)
	f.poller.progressTick()

	view := f.poller.View()
	assert.Equal(t, 65000, view.EstimatedMs)
	assert.Equal(t, 60000, view.Track.ProgressMs, "snapshot must not be overwritten")
	assert.Equal(t, "1:05 / 3:00 (1:55 left)", view.ProgressLine())

	f.clock.Advance(10 * time.Minute)
	f.poller.progressTick()
	assert.Equal(t, 180000, f.poller.View().EstimatedMs, "clamped to duration")
}

func TestPoller_ProgressForcesNearEndCadence(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 170000, 180000)}}
	f.poller.Tick(context.Background())
	assert.Equal(t, IntervalTrackChanged, f.poller.View().Interval)

	f.clock.Advance(8500 * time.Millisecond)
	f.poller.progressTick()

	assert.Equal(t, IntervalNearEnd, f.poller.View().Interval)
}

func TestPoller_ProgressIgnoresPaused(t *testing.T) {
	f := newPollerFixture(t, true)
	paused := playing("A", 60000, 180000)
	paused.IsPlaying = false
	f.player.responses = []playerResponse{{track: paused}}
	f.poller.Tick(context.Background())

	f.clock.Advance(5 * time.Second)
	f.poller.progressTick()

	assert.Equal(t, 60000, f.poller.View().EstimatedMs)
}

func TestPoller_SubscribeReceivesViews(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 0, 1000)}}

	var got []domain.PlaybackView
	f.poller.Subscribe(func(v domain.PlaybackView) { got = append(got, v) })

	f.poller.Tick(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Track.TrackName)
}

func TestPoller_StartStop(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.responses = []playerResponse{{track: playing("A", 0, 180000)}}

	published := make(chan domain.PlaybackView, 16)
	f.poller.Subscribe(func(v domain.PlaybackView) {
		select {
		case published <- v:
		default:
		}
	})

	require.NoError(t, f.poller.Start(context.Background()))
	assert.Error(t, f.poller.Start(context.Background()), "second start is rejected")

	select {
	case v := <-published:
		assert.Equal(t, domain.StatusPlaying, v.Status)
	case <-time.After(time.Second):
		t.Fatal("first poll did not run immediately")
	}

	f.poller.Stop()
	f.poller.Stop()

	calls := f.player.Calls()
	f.poller.PollNow()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, f.player.Calls(), "no poll after stop")
}

func TestPoller_StopCancelsInFlightPoll(t *testing.T) {
	f := newPollerFixture(t, true)
	f.player.block = make(chan struct{})
	f.player.entered = make(chan struct{}, 1)

	require.NoError(t, f.poller.Start(context.Background()))
	<-f.player.entered

	done := make(chan struct{})
	go func() {
		f.poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not cancel the in-flight poll")
	}
	assert.Equal(t, domain.StatusLoading, f.poller.View().Status, "cancellation leaves state unchanged")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "unauthorized_persisted", OutcomeUnauthorizedPersisted.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
