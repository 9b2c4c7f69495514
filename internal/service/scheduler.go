package service

import (
	"context"
	"sync"
	"time"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

// AutosyncConfig holds the timing policy of the scheduler. Zero values fall
// back to the defaults noted per field.
type AutosyncConfig struct {
	// Interval between periodic sync attempts. Default 5m.
	Interval time.Duration

	// RecordDebounce is how long the scheduler waits after the last local
	// change before triggering, so a burst of edits coalesces into one
	// cycle. Default 2s.
	RecordDebounce time.Duration

	// SettleDelay is the pause after connectivity returns before syncing,
	// letting a flapping link settle. Default 1s.
	SettleDelay time.Duration

	// DebounceFloor is the minimum gap between automatic cycles. Forced
	// triggers bypass it. Default 30s.
	DebounceFloor time.Duration
}

func (c *AutosyncConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.RecordDebounce <= 0 {
		c.RecordDebounce = 2 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.DebounceFloor <= 0 {
		c.DebounceFloor = 30 * time.Second
	}
}

// Autosync drives the engine's Sync on a fixed interval, after bursts of
// local edits, on regained connectivity, and on focus events. It never
// queues triggers: the engine's own single-flight guard drops extras.
//
// The job is idle until Start is called.
type Autosync struct {
	driver  SyncDriver
	monitor connectivity
	logger  *logger.Logger
	cfg     AutosyncConfig

	// now is a clock seam for tests.
	now func() time.Time

	mu          sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	triggerCh   chan syncTrigger
	debounce    *time.Timer
	lastAuto    time.Time
	unsubscribe func()
}

type syncTrigger struct {
	forced bool
	reason string
}

func NewAutosync(driver SyncDriver, monitor connectivity, cfg AutosyncConfig, logger *logger.Logger) *Autosync {
	cfg.applyDefaults()
	return &Autosync{
		driver:  driver,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Start stops any previously running job, then launches the background
// loop. The loop exits when ctx is cancelled or Stop is called.
func (a *Autosync) Start(ctx context.Context) {
	a.Stop()

	a.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.triggerCh = make(chan syncTrigger, 1)
	if a.monitor != nil {
		a.unsubscribe = a.monitor.Subscribe(a.onConnectivityChange)
	}
	a.wg.Add(1)
	triggers := a.triggerCh
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		t := time.NewTicker(a.cfg.Interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				a.runCycle(jobCtx, syncTrigger{reason: "interval"})
			case trig := <-triggers:
				a.runCycle(jobCtx, trig)
			}
		}
	}()
}

// Stop cancels the background loop and blocks until it has fully exited.
// Safe to call when the job is not running.
func (a *Autosync) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.triggerCh = nil
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	if a.debounce != nil {
		a.debounce.Stop()
		a.debounce = nil
	}
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// NoteLocalChange arms (or re-arms) the record debounce timer. A burst of
// edits keeps pushing the timer forward and produces a single trigger once
// the burst quiets down.
func (a *Autosync) NoteLocalChange() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.triggerCh == nil {
		return
	}
	if a.debounce != nil {
		a.debounce.Reset(a.cfg.RecordDebounce)
		return
	}
	a.debounce = time.AfterFunc(a.cfg.RecordDebounce, func() {
		a.mu.Lock()
		a.debounce = nil
		a.mu.Unlock()
		a.requestSync(syncTrigger{reason: "local_change"})
	})
}

// NoteFocus requests a sync for an app foreground/visibility event.
// Subject to the debounce floor like any other automatic trigger.
func (a *Autosync) NoteFocus() {
	a.requestSync(syncTrigger{reason: "focus"})
}

// TriggerSync requests an immediate cycle, bypassing the debounce floor
// and the empty-queue skip.
func (a *Autosync) TriggerSync() {
	a.requestSync(syncTrigger{forced: true, reason: "manual"})
}

// onConnectivityChange schedules a settle-delayed sync when the network
// comes back. Going offline needs nothing: the engine drops triggers on
// its own.
func (a *Autosync) onConnectivityChange(online bool) {
	if !online {
		return
	}
	time.AfterFunc(a.cfg.SettleDelay, func() {
		a.requestSync(syncTrigger{reason: "reconnect"})
	})
}

func (a *Autosync) requestSync(trig syncTrigger) {
	a.mu.Lock()
	ch := a.triggerCh
	a.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- trig:
	default:
		// a trigger is already queued; one cycle covers both
	}
}

func (a *Autosync) runCycle(ctx context.Context, trig syncTrigger) {
	log := a.logger.With().Str("func", "Autosync.runCycle").Str("reason", trig.reason).Logger()

	if !trig.forced {
		a.mu.Lock()
		tooSoon := !a.lastAuto.IsZero() && a.now().Sub(a.lastAuto) < a.cfg.DebounceFloor
		a.mu.Unlock()
		if tooSoon {
			log.Debug().Msg("skipping sync, inside debounce floor")
			return
		}

		status := a.driver.Status()
		if status.PendingCount == 0 && status.State != models.StateError {
			log.Debug().Msg("skipping sync, nothing pending")
			return
		}
	}

	a.mu.Lock()
	a.lastAuto = a.now()
	a.mu.Unlock()

	// the engine reports the failure through its own state; the scheduler
	// just waits for the next trigger
	_ = a.driver.Sync(ctx)
}
