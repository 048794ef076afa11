package storage

import (
	"context"
	"time"

	"github.com/openbfd/bfd/am"
	"github.com/openbfd/bfd/db"
	"github.com/openbfd/bfd/errors"
	"github.com/openbfd/bfd/logger"
)

// withRetry runs fn, re-attempting on busy-database errors with doubling
// backoff up to the configured attempt count. Exhausted retries surface as
// errors.ErrStorageTransient; any other failure returns immediately.
func withRetry(ctx context.Context, cfg am.StoreConfig, op string, fn func() error) error {
	attempts := cfg.RetryAttemptsOrDefault()
	backoff := time.Duration(cfg.RetryBackoffMSOrDefault()) * time.Millisecond

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !db.IsBusy(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		logger.DBDebugw("retrying after busy database",
			logger.FieldOperation, op,
			"attempt", attempt,
			"backoff", backoff.String(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return errors.Wrapf(errors.ErrStorageTransient, "%s failed after %d attempts: %v", op, attempts, err)
}
