package service

import (
	"context"
	"fmt"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/internal/store"
	"github.com/finwallet/finwallet/models"
)

// applyEngine routes a remote change to the local collection for its entity
// type. CREATE and UPDATE share the upsert path so that remote replays
// (including full resyncs) are safe to apply more than once.
type applyEngine struct {
	entities store.EntityRepository
	logger   *logger.Logger
}

func NewApplyEngine(entities store.EntityRepository, logger *logger.Logger) Applier {
	return &applyEngine{
		entities: entities,
		logger:   logger,
	}
}

func (a *applyEngine) Apply(ctx context.Context, change models.Change) error {
	if !change.EntityType.Valid() {
		// unknown types are skipped, not fatal: an older client must
		// survive changes introduced by a newer schema
		a.logger.Warn().
			Str("entity_type", string(change.EntityType)).
			Str("entity_id", change.EntityID).
			Msg("skipping change with unknown entity type")
		return nil
	}

	switch change.Operation {
	case models.OperationDelete:
		if err := a.entities.Delete(ctx, change.EntityType, change.EntityID); err != nil {
			return fmt.Errorf("apply delete %s/%s: %w", change.EntityType, change.EntityID, err)
		}
	case models.OperationCreate, models.OperationUpdate:
		if err := a.entities.Upsert(ctx, change.EntityType, change.EntityID, change.Payload); err != nil {
			return fmt.Errorf("apply upsert %s/%s: %w", change.EntityType, change.EntityID, err)
		}
	default:
		a.logger.Warn().
			Str("operation", string(change.Operation)).
			Str("entity_id", change.EntityID).
			Msg("skipping change with unknown operation")
	}

	return nil
}
