package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.Settings
	setErr   error
}

func (m *mockSettingsService) Get() domain.Settings { return m.settings }

func (m *mockSettingsService) SetClientID(id string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.settings.ClientID = id
	return nil
}

func (m *mockSettingsService) SetRedirectURI(uri string) error {
	if err := domain.ValidateRedirectURI(uri); err != nil {
		return err
	}
	m.settings.RedirectURI = uri
	return nil
}

func (m *mockSettingsService) SetShowQueue(show bool) error {
	m.settings.ShowQueue = show
	return nil
}

func (m *mockSettingsService) Path() string { return "/home/test/.config/nowplaying/config.toml" }

// mockAuthenticator implements driving.Authenticator for testing.
type mockAuthenticator struct {
	record         domain.TokenRecord
	err            error
	browserEnabled bool
	prompt         driving.LoginPrompt
	deadline       time.Time
	promptURL      string
	promptErr      error
}

func (m *mockAuthenticator) Login(ctx context.Context) (domain.TokenRecord, error) {
	m.deadline, _ = ctx.Deadline()
	if m.prompt != nil {
		m.prompt(m.promptURL, m.promptErr)
	}
	return m.record, m.err
}

func (m *mockAuthenticator) SetPrompt(p driving.LoginPrompt) { m.prompt = p }
func (m *mockAuthenticator) SetBrowserEnabled(enabled bool)  { m.browserEnabled = enabled }

// mockTokenLifecycle implements driving.TokenLifecycle for testing.
type mockTokenLifecycle struct {
	record   domain.TokenRecord
	loggedIn bool
	clearErr error
	cleared  bool
}

func (m *mockTokenLifecycle) Current(context.Context) (domain.TokenRecord, bool) {
	return m.record, m.loggedIn
}

func (m *mockTokenLifecycle) EnsureFresh(_ context.Context, r domain.TokenRecord) (domain.TokenRecord, error) {
	return r, nil
}

func (m *mockTokenLifecycle) ForceRefresh(_ context.Context, r domain.TokenRecord) (domain.TokenRecord, error) {
	return r, nil
}

func (m *mockTokenLifecycle) Clear(context.Context) error {
	m.cleared = m.clearErr == nil
	return m.clearErr
}

// mockProbe implements driving.PlaybackProbe for testing.
type mockProbe struct {
	result domain.ProbeResult
	err    error
}

func (m *mockProbe) Probe(context.Context) (domain.ProbeResult, error) {
	return m.result, m.err
}

// mockNowPlaying implements driving.NowPlayingService for testing.
// Start publishes the scripted views synchronously.
type mockNowPlaying struct {
	mu        sync.Mutex
	views     []domain.PlaybackView
	observers []func(domain.PlaybackView)
	started   bool
	stopped   bool
	pollNows  int
	startErr  error
}

func (m *mockNowPlaying) Start(context.Context) error {
	m.mu.Lock()
	if m.startErr != nil {
		m.mu.Unlock()
		return m.startErr
	}
	m.started = true
	observers := append([]func(domain.PlaybackView){}, m.observers...)
	views := m.views
	m.mu.Unlock()

	for _, v := range views {
		for _, fn := range observers {
			fn(v)
		}
	}
	return nil
}

func (m *mockNowPlaying) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *mockNowPlaying) PollNow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollNows++
}

func (m *mockNowPlaying) View() domain.PlaybackView { return domain.PlaybackView{} }

func (m *mockNowPlaying) Subscribe(fn func(domain.PlaybackView)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// mockTokenWatcher implements driven.TokenWatcher for testing.
type mockTokenWatcher struct {
	fired chan struct{}
}

func (m *mockTokenWatcher) Watch(ctx context.Context, onChange func()) error {
	onChange()
	close(m.fired)
	<-ctx.Done()
	return nil
}

// useServices injects s for one test and restores the previous services
// and flag values afterwards.
func useServices(t *testing.T, s *Services) {
	t.Helper()
	old := &Services{
		Settings:   settingsService,
		Auth:       authenticator,
		Tokens:     tokenLifecycle,
		NowPlaying: nowPlaying,
		Probe:      playbackProbe,
		Watcher:    tokenWatcher,
		OpenURL:    openURL,
		LogPath:    logPath,
	}
	oldBootstrap := bootstrap
	bootstrap = nil
	SetServices(s)

	t.Cleanup(func() {
		SetServices(old)
		bootstrap = oldBootstrap
		watchPlain = false
		loginNoBrowser = false
		loginTimeout = defaultLoginTimeout
		verbose = false
		configDir = ""
	})
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
