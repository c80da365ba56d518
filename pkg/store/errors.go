package store

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// errKind sorts storage failures into the three classes the retry policy
// distinguishes. Classification happens here, at the adapter boundary, so the
// rest of the pipeline never inspects driver-specific error strings.
type errKind int

const (
	kindTransient errKind = iota // lock contention, clears by waiting
	kindConflict                 // uniqueness violation, means the row is already there
	kindFatal
)

// errNonRetryable marks fatal storage errors so the retrier stops on them
var errNonRetryable = errors.New("non-retryable storage error")

func classify(err error) errKind {
	if isLockError(err) {
		return kindTransient
	}
	if isConflictError(err) {
		return kindConflict
	}
	return kindFatal
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

// isConflictError checks if an error is a uniqueness violation
func isConflictError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed (1555)") ||
		strings.Contains(errStr, "constraint failed (2067)")
}

// retryExec runs op until it succeeds, hits a uniqueness conflict, or fails
// non-transiently. Transient lock errors are retried at a fixed interval with
// no attempt cap; cancellation of ctx is the only bound. Conflicts are
// reported as an outcome, not an error.
func retryExec(ctx context.Context, delay time.Duration, op func() error) (conflict bool, err error) {
	retrier := repeater.NewFixed(math.MaxInt, delay)
	err = retrier.Do(ctx, func() error {
		opErr := op()
		if opErr == nil {
			return nil
		}
		switch classify(opErr) {
		case kindTransient:
			return opErr
		case kindConflict:
			conflict = true
			return nil
		default:
			return errors.Join(errNonRetryable, opErr)
		}
	}, errNonRetryable)
	return conflict, err
}
