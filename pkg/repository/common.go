package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// ErrNotFound is returned when a requested record doesn't exist
var ErrNotFound = errors.New("not found")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// withLockRetry runs a write, retrying with backoff while sqlite reports a lock
func withLockRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	var critical *criticalError
	err := retrier.Do(ctx, func() error {
		err := fn()
		if err != nil && !isLockError(err) {
			critical = &criticalError{err: err}
			return nil // stops the retrier, error reported below
		}
		return err
	})
	if critical != nil {
		return critical.err
	}
	return err
}
