package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/nowplaying/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/nowplaying/internal/core/domain"
)

// Run shows the TUI until the user quits or ctx ends. It subscribes to
// the now-playing service, starts it, and stops it on return.
func Run(ctx context.Context, ports *Ports, opts ...tea.ProgramOption) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(app, opts...)

	box := newMailbox()
	ports.NowPlaying.Subscribe(box.put)
	go box.forward(ctx, func(v domain.PlaybackView) {
		p.Send(messages.PlaybackUpdated{View: v})
	})

	if err := ports.NowPlaying.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer ports.NowPlaying.Stop()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// mailbox holds the latest view. put never blocks, so the poller is
// never held up by rendering; stale views are replaced.
type mailbox struct {
	ch chan domain.PlaybackView
}

func newMailbox() *mailbox {
	return &mailbox{ch: make(chan domain.PlaybackView, 1)}
}

func (m *mailbox) put(v domain.PlaybackView) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// forward delivers views to send until ctx is done.
func (m *mailbox) forward(ctx context.Context, send func(domain.PlaybackView)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-m.ch:
			send(v)
		}
	}
}
