package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/internal/mock"
	"github.com/finwallet/finwallet/models"
)

// Scheduler tests use real timers with short durations, so generous waits
// keep them stable on a loaded machine.

func testAutosyncConfig() AutosyncConfig {
	return AutosyncConfig{
		Interval:       time.Hour, // keep the ticker out of the way
		RecordDebounce: 50 * time.Millisecond,
		SettleDelay:    20 * time.Millisecond,
		DebounceFloor:  time.Hour,
	}
}

func newTestAutosync(t *testing.T, ctrl *gomock.Controller, cfg AutosyncConfig, monitor connectivity) (*Autosync, *mock.MockSyncDriver) {
	t.Helper()
	driver := mock.NewMockSyncDriver(ctrl)
	return NewAutosync(driver, monitor, cfg, logger.Nop()), driver
}

// ── Debounce ─────────────────────────────────────────────────────────────────

func TestAutosync_DebounceCoalescesBurstIntoOneCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, driver := newTestAutosync(t, ctrl, testAutosyncConfig(), nil)

	var cycles atomic.Int32
	driver.EXPECT().Status().Return(models.SyncStatus{PendingCount: 5}).AnyTimes()
	driver.EXPECT().
		Sync(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			cycles.Add(1)
			return nil
		}).
		Times(1)

	job.Start(context.Background())
	defer job.Stop()

	for range 5 {
		job.NoteLocalChange()
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), cycles.Load(), "a burst of edits must produce one cycle")
}

// ── Skip rules ───────────────────────────────────────────────────────────────

func TestAutosync_SkipsWhenNothingPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, driver := newTestAutosync(t, ctrl, testAutosyncConfig(), nil)

	driver.EXPECT().Status().Return(models.SyncStatus{State: models.StateIdle}).AnyTimes()
	// no Sync expectation: an empty queue means no automatic cycle

	job.Start(context.Background())
	defer job.Stop()

	job.NoteFocus()
	time.Sleep(100 * time.Millisecond)
}

func TestAutosync_DebounceFloorSuppressesBackToBackCycles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, driver := newTestAutosync(t, ctrl, testAutosyncConfig(), nil)

	driver.EXPECT().Status().Return(models.SyncStatus{PendingCount: 1}).AnyTimes()
	driver.EXPECT().Sync(gomock.Any()).Return(nil).Times(1)

	job.Start(context.Background())
	defer job.Stop()

	job.NoteFocus()
	time.Sleep(50 * time.Millisecond)
	job.NoteFocus() // inside the floor window, must be dropped
	time.Sleep(100 * time.Millisecond)
}

func TestAutosync_TriggerSyncBypassesFloorAndEmptySkip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, driver := newTestAutosync(t, ctrl, testAutosyncConfig(), nil)

	// forced cycles never consult Status
	driver.EXPECT().Sync(gomock.Any()).Return(nil).Times(2)

	job.Start(context.Background())
	defer job.Stop()

	job.TriggerSync()
	time.Sleep(50 * time.Millisecond)
	job.TriggerSync()
	time.Sleep(100 * time.Millisecond)
}

// ── Connectivity ─────────────────────────────────────────────────────────────

func TestAutosync_SyncsAfterReconnectSettles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	monitor := newStubMonitor(false)
	job, driver := newTestAutosync(t, ctrl, testAutosyncConfig(), monitor)

	driver.EXPECT().Status().Return(models.SyncStatus{PendingCount: 3}).AnyTimes()
	driver.EXPECT().Sync(gomock.Any()).Return(nil).Times(1)

	job.Start(context.Background())
	defer job.Stop()

	monitor.set(true)
	time.Sleep(150 * time.Millisecond)
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func TestAutosync_StopIsIdempotentAndSilencesTriggers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job, _ := newTestAutosync(t, ctrl, testAutosyncConfig(), nil)

	job.Stop() // never started

	job.Start(context.Background())
	job.Stop()
	job.Stop()

	// no expectations registered: triggers after Stop must be inert
	job.NoteLocalChange()
	job.NoteFocus()
	job.TriggerSync()
	time.Sleep(100 * time.Millisecond)
}