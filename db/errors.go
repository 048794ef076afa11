package db

import (
	"strings"

	"github.com/openbfd/bfd/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// database. This typically occurs during graceful shutdown when the database
// connection is closed before all goroutines have finished their work.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed. This handles both wrapped ErrDatabaseClosed errors from this
// package and raw sql driver errors.
//
// The string matching fallback is necessary because the underlying sql
// driver returns its own error types that we cannot wrap at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}

// IsBusy checks if an error is a transient SQLite contention error that a
// bounded retry can reasonably be expected to clear. The busy timeout
// absorbs most contention; these surface only when it is exhausted.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errors.ErrStorageTransient) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "database table is locked")
}
