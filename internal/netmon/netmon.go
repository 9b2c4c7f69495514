// Package netmon tracks connectivity transitions and fans them out to
// subscribers. It is a leaf utility: the sync engine and the autosync
// scheduler consume it, nothing here reaches back into them.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/finwallet/finwallet/internal/logger"
)

// Probe reports whether the network is currently reachable. Implementations
// typically issue a cheap HEAD request against the sync API.
type Probe func(ctx context.Context) bool

// Monitor holds the current connectivity flag and notifies subscribers on
// every transition. All methods are safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)

	wg     sync.WaitGroup
	cancel context.CancelFunc

	logger *logger.Logger
}

// NewMonitor returns a monitor that starts in the online state. Callers
// drive it either manually via SetOnline or by starting a probe loop.
func NewMonitor(logger *logger.Logger) *Monitor {
	return &Monitor{
		online: true,
		subs:   make(map[int]func(online bool)),
		logger: logger,
	}
}

// IsOnline returns the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity observation. Subscribers are notified
// only on a transition, not on repeated observations of the same state.
// Callbacks run synchronously on the caller's goroutine, outside the lock.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	cbs := make([]func(bool), 0, len(m.subs))
	for _, cb := range m.subs {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("connectivity changed")
	for _, cb := range cbs {
		cb(online)
	}
}

// Subscribe registers cb for connectivity transitions and returns an
// unsubscribe function. Unsubscribing twice is harmless.
func (m *Monitor) Subscribe(cb func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cb
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// StartProbe launches a background loop that samples probe every interval
// and feeds the result into SetOnline. The loop exits when ctx is cancelled
// or Stop is called.
func (m *Monitor) StartProbe(ctx context.Context, interval time.Duration, probe Probe) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	m.Stop()

	m.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				m.SetOnline(probe(probeCtx))
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has fully exited. Safe to
// call when no probe is running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}
