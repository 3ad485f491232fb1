// Package datafeed defines the record plumbing migration tasks move data
// through: a bounded Source drained by inventory tasks, an unbounded Feed
// tailed by incremental tasks, and the Sink both write into.
//
// The physical shape of the data behind these interfaces (tables, change
// streams, wire formats) is a concern of the implementations, not of the
// scheduler or the tasks.
package datafeed

import (
	"time"

	"github.com/pkg/errors"
)

// Record is one unit of migrated data.
type Record struct {
	Key   string
	Value []byte

	// CommitTime is when the change was committed at the origin. Zero for
	// snapshot records; incremental tasks use it to measure capture delay.
	CommitTime time.Time
}

// Source is a bounded snapshot of part of the dataset, read in chunks.
// Implementations are read by a single task goroutine at a time.
type Source interface {
	// EstimatedRows is the expected total record count. Estimate only;
	// the true count is whatever NextChunk yields before io.EOF.
	EstimatedRows() int64

	// NextChunk returns the next chunk of records, or io.EOF once the
	// snapshot is exhausted.
	NextChunk() ([]Record, error)
}

// Feed is an unbounded stream of change records.
type Feed interface {
	// Next blocks until a record is available. It returns io.EOF once the
	// feed has been closed and drained. Errors marked transient (see
	// Transient) mean the read may be retried.
	Next() (Record, error)

	// Close ends the feed and unblocks pending Next calls. Idempotent.
	Close() error
}

// Sink receives migrated records.
type Sink interface {
	Write(recs []Record) error
}

type transientError struct {
	cause error
}

func (e *transientError) Error() string { return e.cause.Error() }

// Transient marks an error as retryable by the reader.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: err}
}

// Transientf is Transient(errors.Errorf(...)).
func Transientf(format string, args ...interface{}) error {
	return &transientError{cause: errors.Errorf(format, args...)}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}
