package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockAuthServer implements driven.AuthorizationServer for testing.
type mockAuthServer struct {
	mu sync.Mutex

	exchangeGrant domain.TokenGrant
	exchangeErr   error
	exchangeCode  string
	exchangeVerif string

	refreshGrants []domain.TokenGrant
	refreshErr    error
	refreshCalls  int
	refreshTokens []string
}

func (m *mockAuthServer) AuthCodeURL(state, challenge string) string {
	return "https://auth.example/authorize?state=" + state + "&code_challenge=" + challenge
}

func (m *mockAuthServer) ExchangeCode(_ context.Context, code, verifier string) (domain.TokenGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeCode = code
	m.exchangeVerif = verifier
	if m.exchangeErr != nil {
		return domain.TokenGrant{}, m.exchangeErr
	}
	return m.exchangeGrant, nil
}

func (m *mockAuthServer) Refresh(_ context.Context, refreshToken string) (domain.TokenGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	m.refreshTokens = append(m.refreshTokens, refreshToken)
	if m.refreshErr != nil {
		return domain.TokenGrant{}, m.refreshErr
	}
	if len(m.refreshGrants) == 0 {
		return domain.TokenGrant{AccessToken: "refreshed", ExpiresIn: time.Hour}, nil
	}
	grant := m.refreshGrants[0]
	if len(m.refreshGrants) > 1 {
		m.refreshGrants = m.refreshGrants[1:]
	}
	return grant, nil
}

func (m *mockAuthServer) RefreshCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

// playerResponse is one scripted CurrentlyPlaying result.
type playerResponse struct {
	track *domain.NowPlaying
	err   error
}

// mockPlayer implements driven.PlayerAPI for testing.
type mockPlayer struct {
	mu        sync.Mutex
	responses []playerResponse
	tokens    []string

	queue    domain.QueueSnapshot
	queueErr error

	// block, when set, holds CurrentlyPlaying until closed or ctx is done.
	block chan struct{}
	// entered receives a value each time CurrentlyPlaying starts.
	entered chan struct{}

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	queueCalls  atomic.Int32
}

func (m *mockPlayer) CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	m.mu.Lock()
	m.tokens = append(m.tokens, accessToken)
	var resp playerResponse
	if len(m.responses) > 0 {
		resp = m.responses[0]
		if len(m.responses) > 1 {
			m.responses = m.responses[1:]
		}
	}
	block := m.block
	entered := m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return resp.track, resp.err
}

// ProbeCurrentlyPlaying reports 200 with a track, 204 without, or the
// APIError status.
func (m *mockPlayer) ProbeCurrentlyPlaying(ctx context.Context, accessToken string) (int, *domain.NowPlaying, error) {
	track, err := m.CurrentlyPlaying(ctx, accessToken)
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status, nil, err
	case err != nil:
		return 0, nil, err
	case track == nil:
		return http.StatusNoContent, nil, nil
	}
	return http.StatusOK, track, nil
}

func (m *mockPlayer) Queue(_ context.Context, _ string) (domain.QueueSnapshot, error) {
	m.queueCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue, m.queueErr
}

func (m *mockPlayer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func (m *mockPlayer) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

// mockCallbackListener implements driven.CallbackListener for testing.
type mockCallbackListener struct {
	listenErr error
	session   *mockCallbackSession
	uri       string
}

func (m *mockCallbackListener) Listen(redirectURI string) (driven.CallbackSession, error) {
	m.uri = redirectURI
	if m.listenErr != nil {
		return nil, m.listenErr
	}
	return m.session, nil
}

// mockCallbackSession delivers params (or waits for ctx when params is nil).
type mockCallbackSession struct {
	params  *driven.CallbackParams
	verdict error
	judged  bool
	closes  atomic.Int32
}

func (s *mockCallbackSession) Await(ctx context.Context, judge func(driven.CallbackParams) error) (driven.CallbackParams, error) {
	if s.params == nil {
		<-ctx.Done()
		return driven.CallbackParams{}, ctx.Err()
	}
	s.judged = true
	s.verdict = judge(*s.params)
	return *s.params, nil
}

func (s *mockCallbackSession) Close() error {
	s.closes.Add(1)
	return nil
}

// mockBrowser implements driven.BrowserLauncher for testing.
type mockBrowser struct {
	opened []string
	err    error
	// onOpen runs after recording the URL.
	onOpen func(url string)
}

func (b *mockBrowser) Open(url string) error {
	b.opened = append(b.opened, url)
	if b.onOpen != nil {
		b.onOpen(url)
	}
	return b.err
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
