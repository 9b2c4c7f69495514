package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwallet/finwallet/internal/logger"
	"github.com/finwallet/finwallet/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:     db,
		logger: logger.Nop(),
	}
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// ── Upsert ──────────────────────────────────────────────────────────────────

func TestEntityRepository_Upsert_Insert(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO transactions (id,payload,updated_at) VALUES (?,?,?) "+
			"ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")).
		WithArgs("t1", `{"amount":"12.50"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(testContext(), models.EntityTransaction, "t1", []byte(`{"amount":"12.50"}`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_Upsert_UnknownEntityType(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	err := repo.Upsert(testContext(), models.EntityType("wallet"), "w1", nil)
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}

func TestEntityRepository_Upsert_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(errors.New("disk full"))

	err := repo.Upsert(testContext(), models.EntityAccount, "a1", []byte(`{}`))
	assert.Error(t, err)
}

// ── Delete ──────────────────────────────────────────────────────────────────

func TestEntityRepository_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM budgets WHERE id = ?")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(testContext(), models.EntityBudget, "b1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_Delete_AbsentRowIsNoError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	// zero rows affected must not surface as an error
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM goals WHERE id = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(testContext(), models.EntityGoal, "missing"))
}

// ── Get ─────────────────────────────────────────────────────────────────────

func TestEntityRepository_Get(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM loans WHERE id = ?")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"name":"car"}`))

	payload, err := repo.Get(testContext(), models.EntityLoan, "l1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"car"}`, string(payload))
}

func TestEntityRepository_Get_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntityRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("SELECT payload FROM categories").
		WithArgs("c404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(testContext(), models.EntityCategory, "c404")
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
