package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

// entityTables maps each synced entity type to its local table. The apply
// engine refuses types missing from this map before any SQL runs.
var entityTables = map[models.EntityType]string{
	models.EntityAccount:     "accounts",
	models.EntityTransaction: "transactions",
	models.EntityCategory:    "categories",
	models.EntityBudget:      "budgets",
	models.EntityGoal:        "goals",
	models.EntityLoan:        "loans",
	models.EntityInvestment:  "investments",
}

func tableFor(entityType models.EntityType) (string, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return table, nil
}

type entityRepository struct {
	*DB
	logger *logger.Logger
}

func NewEntityRepository(db *DB, logger *logger.Logger) EntityRepository {
	return &entityRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *entityRepository) Upsert(ctx context.Context, entityType models.EntityType, entityID string, payload []byte) error {
	log := logger.FromContext(ctx)

	table, err := tableFor(entityType)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert(table).
		Columns("id", "payload", "updated_at").
		Values(entityID, string(payload), time.Now().UTC()).
		Suffix("ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query for %s: %w", table, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Upsert").
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("failed to execute upsert for entity")
		return fmt.Errorf("failed to upsert %s (id=%s): %w", table, entityID, err)
	}

	return nil
}

func (r *entityRepository) Delete(ctx context.Context, entityType models.EntityType, entityID string) error {
	log := logger.FromContext(ctx)

	table, err := tableFor(entityType)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete(table).
		Where(sq.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query for %s: %w", table, err)
	}

	// absence is tolerated: deleting an already-removed entity is a no-op
	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Delete").
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("failed to execute delete for entity")
		return fmt.Errorf("failed to delete %s (id=%s): %w", table, entityID, err)
	}

	return nil
}

func (r *entityRepository) Get(ctx context.Context, entityType models.EntityType, entityID string) ([]byte, error) {
	log := logger.FromContext(ctx)

	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Select("payload").
		From(table).
		Where(sq.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query for %s: %w", table, err)
	}

	var payload string
	if err = r.DB.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, entityType, entityID)
		}
		log.Err(err).
			Str("func", "entityRepository.Get").
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("failed to query entity")
		return nil, fmt.Errorf("failed to query %s (id=%s): %w", table, entityID, err)
	}

	return []byte(payload), nil
}
