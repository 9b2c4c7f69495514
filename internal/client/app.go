package client

import (
	"context"
	"fmt"
	"time"

	"github.com/finwallet/finwallet/internal/adapter"
	"github.com/finwallet/finwallet/internal/config"
	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/internal/netmon"
	"github.com/finwallet/finwallet/internal/service"
	"github.com/finwallet/finwallet/internal/store"
)

// probeInterval is how often the network monitor re-checks reachability.
const probeInterval = 15 * time.Second

// App wires the sync engine together: local storage, remote adapter,
// network monitor, orchestrator and scheduler.
type App struct {
	Engine  *service.Engine
	Monitor *netmon.Monitor

	storages  *store.Storages
	scheduler *service.Autosync
	logger    *logger.Logger
}

func NewApp(cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	api, err := adapter.NewHTTPSyncAPI(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create sync adapter: %w", err)
	}

	if device, err := api.SubjectID(); err != nil {
		log.Warn().Err(err).Msg("bearer token carries no device identity")
	} else {
		log.Info().Str("device", device).Msg("syncing as device")
	}

	monitor := netmon.NewMonitor(log)
	applier := service.NewApplyEngine(storages.Entities, log)
	conflicts := service.NewConflictManager(api, applier, log)

	engine := service.NewEngine(service.EngineDeps{
		Queue:         storages.Queue,
		State:         storages.State,
		API:           api,
		Applier:       applier,
		Conflicts:     conflicts,
		Monitor:       monitor,
		Logger:        log,
		MaxRetryCount: cfg.Sync.MaxRetryCount,
	})

	scheduler := service.NewAutosync(engine, monitor, service.AutosyncConfig{
		Interval:       cfg.Sync.Interval,
		RecordDebounce: cfg.Sync.RecordDebounce,
		SettleDelay:    cfg.Sync.SettleDelay,
		DebounceFloor:  cfg.Sync.DebounceFloor,
	}, log)

	engine.SetOnLocalChange(scheduler.NoteLocalChange)

	app := &App{
		Engine:    engine,
		Monitor:   monitor,
		storages:  storages,
		scheduler: scheduler,
		logger:    log,
	}
	app.Monitor.StartProbe(context.Background(), probeInterval, api.Ping)

	return app, nil
}

// Run restores durable state, starts the autosync loop and performs an
// initial cycle. It returns once the engine is running; Shutdown stops it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Engine.Restore(ctx); err != nil {
		return fmt.Errorf("restore sync state: %w", err)
	}

	a.scheduler.Start(ctx)
	a.scheduler.TriggerSync()

	a.logger.Info().Str("func", "App.Run").Msg("sync engine started")
	return nil
}

// Shutdown stops the scheduler and the monitor and closes the local store.
func (a *App) Shutdown() {
	a.scheduler.Stop()
	a.Monitor.Stop()

	if err := a.storages.Close(); err != nil {
		a.logger.Error().Err(err).Msg("close local storage")
	}
	a.logger.Info().Msg("sync engine stopped")
}
