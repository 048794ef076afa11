package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/errors"
)

// fastRetry keeps test backoff short
var fastRetry = am.StoreConfig{RetryAttempts: 3, RetryBackoffMS: 1}

func TestWithRetryRecoversFromBusy(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO events").WillReturnError(errors.New("database is locked"))
	mock.ExpectExec("INSERT INTO events").WillReturnError(errors.New("database is locked"))
	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(1, 1))

	err = withRetry(context.Background(), fastRetry, "set", func() error {
		_, err := mockDB.Exec("INSERT INTO events")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithRetryExhaustsAsTransient(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), fastRetry, "set", func() error {
		attempts++
		return errors.New("database is locked")
	})
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("constraint failed")
	err := withRetry(context.Background(), fastRetry, "set", func() error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.IsTransient(err))
	assert.Equal(t, 1, attempts)
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := am.StoreConfig{RetryAttempts: 3, RetryBackoffMS: int(time.Hour / time.Millisecond)}
	err := withRetry(ctx, slow, "set", func() error {
		return errors.New("database is locked")
	})
	require.ErrorIs(t, err, context.Canceled)
}
