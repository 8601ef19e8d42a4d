package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"contest-ledger/host"
	"contest-ledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

var lockQuery = regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")

func TestGormStoreInvokeCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockQuery).WithArgs(DefaultLockID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("challenge_count", []byte("4"), time.Now()))
	mock.ExpectExec(`INSERT INTO "ledger_entries"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Invoke(context.Background(), func(_ context.Context, tx host.Tx) error {
		var n uint32
		ok, err := tx.Get(models.ChallengeCountKey(), &n)
		if err != nil {
			return err
		}
		assert.True(t, ok)
		assert.Equal(t, uint32(4), n)
		return tx.Set(models.ChallengeCountKey(), n+1)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreInvokeRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(lockQuery).WithArgs(DefaultLockID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_entries" WHERE key = \$1`).
		WithArgs("donation_count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := s.Invoke(context.Background(), func(_ context.Context, tx host.Tx) error {
		ok, err := tx.Has(models.DonationCountKey())
		if err != nil {
			return err
		}
		assert.False(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGetMissingKey(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockQuery).WithArgs(DefaultLockID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))
	mock.ExpectCommit()

	err := s.Invoke(context.Background(), func(_ context.Context, tx host.Tx) error {
		var c models.Challenge
		ok, err := tx.Get(models.ChallengeKey(9), &c)
		assert.False(t, ok)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreLockFailureAborts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockQuery).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	called := false
	err := s.Invoke(context.Background(), func(_ context.Context, _ host.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire ledger lock")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
