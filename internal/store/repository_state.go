package store

import (
	"context"
	"fmt"

	"github.com/finwallet/finwallet/internal/logger"
)

const (
	loadWatermark = `SELECT last_sync_timestamp FROM sync_state WHERE id = 1;`

	saveWatermark = `UPDATE sync_state SET last_sync_timestamp = $1 WHERE id = 1;`
)

type stateRepository struct {
	*DB
	logger *logger.Logger
}

func NewStateRepository(db *DB, logger *logger.Logger) StateRepository {
	return &stateRepository{
		DB:     db,
		logger: logger,
	}
}

func (s *stateRepository) LoadWatermark(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	var ts int64
	if err := s.DB.QueryRowContext(ctx, loadWatermark).Scan(&ts); err != nil {
		log.Err(err).
			Str("func", "stateRepository.LoadWatermark").
			Msg("failed to load sync watermark")
		return 0, fmt.Errorf("failed to load sync watermark: %w", err)
	}

	return ts, nil
}

func (s *stateRepository) SaveWatermark(ctx context.Context, ts int64) error {
	log := logger.FromContext(ctx)

	if _, err := s.DB.ExecContext(ctx, saveWatermark, ts); err != nil {
		log.Err(err).
			Str("func", "stateRepository.SaveWatermark").
			Int64("watermark", ts).
			Msg("failed to save sync watermark")
		return fmt.Errorf("failed to save sync watermark: %w", err)
	}

	return nil
}
