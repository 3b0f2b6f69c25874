package services

import (
	"context"
	"sync"
	"time"
)

// RepeatingTimer runs one callback on a fixed, adjustable interval.
// The callback runs on the timer goroutine and must not call Stop.
type RepeatingTimer struct {
	fn func()

	mu       sync.Mutex
	interval time.Duration
	ticker   *time.Ticker
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
}

// NewRepeatingTimer creates a stopped timer.
func NewRepeatingTimer(interval time.Duration, fn func()) *RepeatingTimer {
	return &RepeatingTimer{
		fn:       fn,
		interval: interval,
	}
}

// Start arms the timer. It returns immediately; the first callback fires
// one interval later. Starting a running timer is a no-op.
func (t *RepeatingTimer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.ticker = time.NewTicker(t.interval)
	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})

	go t.run(ctx, t.ticker, t.stopCh, t.done)
}

func (t *RepeatingTimer) run(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			t.fn()
		}
	}
}

// SetInterval changes the interval. The timer is re-armed only when d
// differs from the current interval; the return value reports whether
// that happened.
func (t *RepeatingTimer) SetInterval(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if d == t.interval {
		return false
	}
	t.interval = d
	if t.running {
		t.ticker.Reset(d)
	}
	return true
}

// Interval returns the current interval.
func (t *RepeatingTimer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// Stop disarms the timer and waits for an executing callback to return.
// Stopping a stopped timer is a no-op.
func (t *RepeatingTimer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.ticker.Stop()
	close(t.stopCh)
	done := t.done
	t.mu.Unlock()

	<-done
}
