package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure Poller implements the interface.
var _ driving.NowPlayingService = (*Poller)(nil)

// Outcome is the result of one poll tick.
type Outcome int

// Tick outcomes.
const (
	// OutcomeSkipped means another poll was in flight; nothing happened.
	OutcomeSkipped Outcome = iota
	// OutcomeNotConfigured means no client id is set; no network access.
	OutcomeNotConfigured
	// OutcomeNotLoggedIn means no token record is stored; no network access.
	OutcomeNotLoggedIn
	// OutcomeNothingPlaying means the API reported no active playback.
	OutcomeNothingPlaying
	// OutcomePlaying means a new snapshot was captured.
	OutcomePlaying
	// OutcomeError means a transient network, parse, or refresh failure.
	OutcomeError
	// OutcomeUnauthorizedPersisted means the retry after a forced refresh was also rejected.
	OutcomeUnauthorizedPersisted
	// OutcomeCancelled means the session ended during the poll; state is unchanged.
	OutcomeCancelled
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotConfigured:
		return "not_configured"
	case OutcomeNotLoggedIn:
		return "not_logged_in"
	case OutcomeNothingPlaying:
		return "nothing_playing"
	case OutcomePlaying:
		return "playing"
	case OutcomeError:
		return "error"
	case OutcomeUnauthorizedPersisted:
		return "unauthorized_persisted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// maxAttempts is one request plus one retry after a forced refresh.
const maxAttempts = 2

// Poller polls the player API on an adaptive cadence and interpolates
// progress between polls. At most one poll is in flight at a time.
type Poller struct {
	tokens   driving.TokenLifecycle
	player   driven.PlayerAPI
	settings domain.Settings
	now      func() time.Time

	inFlight atomic.Bool

	mu        sync.Mutex
	view      domain.PlaybackView
	observers []func(domain.PlaybackView)
	session   context.Context
	cancel    context.CancelFunc
	stopping  bool
	pollTimer *RepeatingTimer
	progTimer *RepeatingTimer
	wg        sync.WaitGroup
}

// NewPoller creates a stopped poller.
func NewPoller(tokens driving.TokenLifecycle, player driven.PlayerAPI, settings domain.Settings) *Poller {
	return &Poller{
		tokens:   tokens,
		player:   player,
		settings: settings,
		now:      time.Now,
		view: domain.PlaybackView{
			Status:   domain.StatusLoading,
			Interval: IntervalNothingPlaying,
		},
	}
}

// Subscribe registers fn to receive every published view.
// fn runs on poller goroutines and must not block.
func (p *Poller) Subscribe(fn func(domain.PlaybackView)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// View returns the latest published view.
func (p *Poller) View() domain.PlaybackView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Start begins polling under ctx. The first poll is dispatched immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return errors.New("poller already started")
	}
	p.session, p.cancel = context.WithCancel(ctx)
	p.pollTimer = NewRepeatingTimer(p.view.Interval, p.PollNow)
	p.progTimer = NewRepeatingTimer(ProgressTick, p.progressTick)
	session := p.session
	p.mu.Unlock()

	logger.Debug("poller: starting")
	p.pollTimer.Start(session)
	p.progTimer.Start(session)
	p.PollNow()
	return nil
}

// Stop cancels the session, stops both timers, and waits for an in-flight
// poll to return. No poll starts once Stop has begun.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil || p.stopping {
		p.mu.Unlock()
		return
	}
	p.stopping = true
	p.cancel()
	pollTimer, progTimer := p.pollTimer, p.progTimer
	p.mu.Unlock()

	pollTimer.Stop()
	progTimer.Stop()
	p.wg.Wait()
	logger.Debug("poller: stopped")
}

// PollNow dispatches a poll on its own goroutine. It is dropped when a
// poll is already in flight or the poller is stopping.
func (p *Poller) PollNow() {
	p.mu.Lock()
	if p.stopping || p.session == nil || p.inFlight.Load() {
		p.mu.Unlock()
		return
	}
	session := p.session
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.Tick(session)
	}()
}

// Tick runs one poll under ctx. A tick that starts while another is in
// flight returns OutcomeSkipped without doing anything.
func (p *Poller) Tick(ctx context.Context) Outcome {
	if !p.inFlight.CompareAndSwap(false, true) {
		logger.Debug("poller: tick dropped, poll in flight")
		return OutcomeSkipped
	}
	defer p.inFlight.Store(false)

	pollCtx, cancel := context.WithTimeout(ctx, PollTimeout)
	defer cancel()

	outcome, view := p.poll(pollCtx)
	if outcome == OutcomeError || outcome == OutcomeUnauthorizedPersisted {
		// A cancelled session is not a failure.
		if ctx.Err() != nil {
			outcome = OutcomeCancelled
		}
	}
	if outcome == OutcomeCancelled {
		return outcome
	}

	logger.Debug("poller: %s, next poll in %s", outcome, view.Interval)
	p.publish(view)
	return outcome
}

// poll performs the network work of one tick and builds the resulting view.
func (p *Poller) poll(ctx context.Context) (Outcome, domain.PlaybackView) {
	if !p.settings.IsConfigured() {
		return OutcomeNotConfigured, domain.PlaybackView{Status: domain.StatusNotConfigured, Interval: IntervalIdle}
	}

	record, ok := p.tokens.Current(ctx)
	if !ok {
		return OutcomeNotLoggedIn, domain.PlaybackView{Status: domain.StatusNotLoggedIn, Interval: IntervalIdle}
	}

	record, err := p.tokens.EnsureFresh(ctx, record)
	if err != nil {
		return p.failed(OutcomeError, fmt.Errorf("ensure fresh token: %w", err))
	}

	track, record, err := p.fetchCurrent(ctx, record)
	switch {
	case errors.Is(err, domain.ErrUnauthorizedPersisted):
		return p.failed(OutcomeUnauthorizedPersisted, err)
	case err != nil:
		return p.failed(OutcomeError, err)
	case track == nil:
		return OutcomeNothingPlaying, domain.PlaybackView{
			Status:   domain.StatusNothingPlaying,
			Interval: IntervalNothingPlaying,
		}
	}

	now := p.now()
	estimate := track.EstimateProgress(now, now)
	prev := p.View()
	var prevTrack domain.NowPlaying
	if prev.Status == domain.StatusPlaying {
		prevTrack = prev.Track
	}

	return OutcomePlaying, domain.PlaybackView{
		Status:      domain.StatusPlaying,
		Track:       *track,
		Queue:       p.fetchQueue(ctx, record),
		CapturedAt:  now,
		EstimatedMs: estimate,
		Interval:    NextInterval(prevTrack, *track, estimate),
	}
}

// fetchCurrent requests the current track, retrying exactly once after a
// forced refresh when the first attempt is rejected as unauthorized.
func (p *Poller) fetchCurrent(ctx context.Context, record domain.TokenRecord) (*domain.NowPlaying, domain.TokenRecord, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			refreshed, err := p.tokens.ForceRefresh(ctx, record)
			if err != nil {
				return nil, record, fmt.Errorf("forced refresh: %w", err)
			}
			record = refreshed
		}

		track, err := p.player.CurrentlyPlaying(ctx, record.AccessToken)
		if !errors.Is(err, domain.ErrUnauthorized) {
			return track, record, err
		}
		logger.Debug("poller: attempt %d unauthorized", attempt+1)
		lastErr = err
	}
	return nil, record, fmt.Errorf("%w: %w", domain.ErrUnauthorizedPersisted, lastErr)
}

// fetchQueue looks up the next track. Failures only clear "up next".
func (p *Poller) fetchQueue(ctx context.Context, record domain.TokenRecord) domain.QueueSnapshot {
	if !p.settings.ShowQueue {
		return domain.QueueSnapshot{}
	}
	queue, err := p.player.Queue(ctx, record.AccessToken)
	if err != nil {
		logger.Debug("poller: queue lookup failed: %v", err)
		return domain.QueueSnapshot{}
	}
	return queue
}

func (p *Poller) failed(outcome Outcome, err error) (Outcome, domain.PlaybackView) {
	logger.Warn("poller: %v", err)
	return outcome, domain.PlaybackView{
		Status:   domain.StatusError,
		Interval: IntervalError,
		Err:      err,
	}
}

// publish replaces the view, re-arms the poll timer if the cadence
// changed, and notifies observers.
func (p *Poller) publish(view domain.PlaybackView) {
	p.mu.Lock()
	p.view = view
	timer := p.pollTimer
	observers := append([]func(domain.PlaybackView){}, p.observers...)
	p.mu.Unlock()

	if timer != nil {
		timer.SetInterval(view.Interval)
	}
	for _, fn := range observers {
		fn(view)
	}
}

// progressTick advances the displayed progress estimate without network
// access. The captured snapshot itself is never modified.
func (p *Poller) progressTick() {
	p.mu.Lock()
	if p.view.Status != domain.StatusPlaying || !p.view.Track.IsPlaying || p.view.Track.DurationMs <= 0 {
		p.mu.Unlock()
		return
	}
	p.view.EstimatedMs = p.view.Track.EstimateProgress(p.view.CapturedAt, p.now())
	if nearEnd(p.view.Track, p.view.EstimatedMs) {
		p.view.Interval = IntervalNearEnd
	}
	view := p.view
	timer := p.pollTimer
	observers := append([]func(domain.PlaybackView){}, p.observers...)
	p.mu.Unlock()

	if timer != nil {
		timer.SetInterval(view.Interval)
	}
	for _, fn := range observers {
		fn(view)
	}
}
