package store

import (
	"database/sql"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/migrations"
)

type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
