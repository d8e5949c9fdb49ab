package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func TestTxManagerBeginSuccess(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectCommit()

	manager := NewTxManager(mockPool)
	tx, err := manager.Begin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)

	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, mockPool)
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBeginTx(readCommitted).WillReturnError(mockErr)

	manager := NewTxManager(mockPool)
	tx, err := manager.Begin(context.Background())
	require.ErrorIs(t, err, mockErr)
	assert.Nil(t, tx)
}

func TestTxRollback(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectRollback()

	manager := NewTxManager(mockPool)
	tx, err := manager.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, mockPool)
}

func TestTxRollbackAfterCommitIsNoop(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBeginTx(readCommitted)
	mockPool.ExpectCommit()
	mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

	manager := NewTxManager(mockPool)
	tx, err := manager.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, tx.Rollback(context.Background()))
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create pgxmock pool")
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet(), "expectations were not met")
}
