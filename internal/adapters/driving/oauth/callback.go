// Package oauth provides the loopback listener that receives the
// authorization redirect.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.CallbackListener = (*Listener)(nil)
	_ driven.CallbackSession  = (*Session)(nil)
)

// errListenerClosed is returned by Await after Close.
var errListenerClosed = errors.New("callback listener closed")

const shutdownTimeout = 5 * time.Second

// Listener binds transient callback servers on loopback addresses.
type Listener struct{}

// NewListener creates a callback listener.
func NewListener() *Listener {
	return &Listener{}
}

// Listen binds the host and port of redirectURI and serves its path.
// Both "/callback" and "/callback/" are accepted.
func (l *Listener) Listen(redirectURI string) (driven.CallbackSession, error) {
	if err := domain.ValidateRedirectURI(redirectURI); err != nil {
		return nil, err
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("parse redirect uri: %w", err)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	s := &Session{
		listener: ln,
		requests: make(chan pending),
		done:     make(chan struct{}),
		serveErr: make(chan error, 1),
	}

	path := "/" + strings.Trim(u.Path, "/")
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(path, s.handleCallback)
	if path != "/" {
		router.Get(path+"/", s.handleCallback)
	}

	s.server = &http.Server{
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
	}()

	return s, nil
}

// pending is a redirect handed from the HTTP handler to Await.
type pending struct {
	params  driven.CallbackParams
	verdict chan error
}

// Session is one bound callback server. Only its first redirect is
// accepted; later requests get an "already handled" page.
type Session struct {
	server   *http.Server
	listener net.Listener

	handled  atomic.Bool
	requests chan pending
	serveErr chan error

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// Addr returns the bound address.
func (s *Session) Addr() net.Addr {
	return s.listener.Addr()
}

// Await blocks until the first redirect arrives, ctx ends, or the session closes.
func (s *Session) Await(ctx context.Context, judge func(driven.CallbackParams) error) (driven.CallbackParams, error) {
	select {
	case p := <-s.requests:
		p.verdict <- judge(p.params)
		return p.params, nil
	case err := <-s.serveErr:
		return driven.CallbackParams{}, fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		return driven.CallbackParams{}, ctx.Err()
	case <-s.done:
		return driven.CallbackParams{}, errListenerClosed
	}
}

// Close shuts the server down. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeErr = s.server.Shutdown(ctx)
	})
	return s.closeErr
}

// handleCallback forwards the first redirect to Await and renders its verdict.
func (s *Session) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if !s.handled.CompareAndSwap(false, true) {
		logger.Debug("auth: ignoring repeated callback")
		w.WriteHeader(http.StatusConflict)
		_, _ = fmt.Fprint(w, resultHTML("Authorization already handled", domain.ErrCallbackHandled.Error()+". You can close this window."))
		return
	}

	q := r.URL.Query()
	p := pending{
		params: driven.CallbackParams{
			Code:             q.Get("code"),
			State:            q.Get("state"),
			Error:            q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		},
		verdict: make(chan error, 1),
	}

	select {
	case s.requests <- p:
	case <-s.done:
		writeNotWaiting(w)
		return
	case <-r.Context().Done():
		return
	}

	var verdict error
	select {
	case verdict = <-p.verdict:
	case <-s.done:
		writeNotWaiting(w)
		return
	case <-r.Context().Done():
		return
	}

	if verdict != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", verdict.Error()))
		return
	}
	_, _ = fmt.Fprint(w, resultHTML("Authorization successful!", "You can close this window and return to nowplaying."))
}

func writeNotWaiting(w http.ResponseWriter) {
	w.WriteHeader(http.StatusGone)
	_, _ = fmt.Fprint(w, resultHTML("Authorization failed", "nowplaying is no longer waiting for this login."))
}
