package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

const (
	appendPendingChange = `
		INSERT INTO pending_changes (
			id,
			entity_type,
			entity_id,
			operation,
			payload,
			created_at,
			retry_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7);`

	listPendingChanges = `
		SELECT
			id,
			entity_type,
			entity_id,
			operation,
			payload,
			created_at,
			retry_count
		FROM pending_changes
		ORDER BY created_at, id;`

	countPendingChanges = `SELECT COUNT(*) FROM pending_changes;`

	clearPendingChanges = `DELETE FROM pending_changes;`
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Append(ctx context.Context, change models.PendingChange) error {
	log := logger.FromContext(ctx)

	_, err := q.DB.ExecContext(ctx, appendPendingChange,
		change.ID,
		change.EntityType,
		change.EntityID,
		change.Operation,
		string(change.Payload),
		change.CreatedAt,
		change.RetryCount,
	)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Append").
			Str("change_id", change.ID).
			Str("entity_id", change.EntityID).
			Msg("failed to append pending change")
		return fmt.Errorf("failed to append pending change (id=%s): %w", change.ID, err)
	}

	return nil
}

func (q *queueRepository) List(ctx context.Context) ([]models.PendingChange, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, listPendingChanges)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.List").
			Msg("failed to query pending changes")
		return nil, fmt.Errorf("failed to query pending changes: %w", err)
	}
	defer rows.Close()

	var changes []models.PendingChange

	for rows.Next() {
		var change models.PendingChange
		var payload string

		scanErr := rows.Scan(
			&change.ID,
			&change.EntityType,
			&change.EntityID,
			&change.Operation,
			&payload,
			&change.CreatedAt,
			&change.RetryCount,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "queueRepository.List").
				Msg("failed to scan pending change row")
			return nil, fmt.Errorf("failed to scan pending change row: %w", scanErr)
		}

		if payload != "" {
			change.Payload = []byte(payload)
		}
		changes = append(changes, change)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.List").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating pending change rows: %w", rowsErr)
	}

	return changes, nil
}

func (q *queueRepository) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("pending_changes").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove query: %w", err)
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Int("count", len(ids)).
			Msg("failed to remove acknowledged changes")
		return fmt.Errorf("failed to remove pending changes: %w", err)
	}

	return nil
}

func (q *queueRepository) IncrementRetry(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	query, args, err := sq.Update("pending_changes").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment retry query: %w", err)
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "queueRepository.IncrementRetry").
			Int("count", len(ids)).
			Msg("failed to increment retry counts")
		return fmt.Errorf("failed to increment retry counts: %w", err)
	}

	return nil
}

func (q *queueRepository) Count(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := q.DB.QueryRowContext(ctx, countPendingChanges).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Count").
			Msg("failed to count pending changes")
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}

	return count, nil
}

func (q *queueRepository) Clear(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, clearPendingChanges); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Clear").
			Msg("failed to clear pending changes")
		return fmt.Errorf("failed to clear pending changes: %w", err)
	}

	return nil
}
