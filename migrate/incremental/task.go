// Package incremental implements the change capture task of a migration
// job: tail one change Feed into the Sink until stopped or the feed is
// closed at the source.
package incremental

import (
	"context"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/reshard/reshard/datafeed"
	"github.com/reshard/reshard/migrate"
)

type Task struct {
	taskID  string
	feed    datafeed.Feed
	sink    datafeed.Sink
	limiter *rate.Limiter

	stopOnce sync.Once
	stopCh   chan struct{}

	mu       sync.Mutex
	progress migrate.IncrementalTaskProgress
}

var _ migrate.Task = (*Task)(nil)

// NewTask tails feed into sink. applyLimit caps the apply rate in
// records per second; <= 0 means unlimited.
func NewTask(taskID string, feed datafeed.Feed, sink datafeed.Sink, applyLimit float64) *Task {
	limit := rate.Inf
	if applyLimit > 0 {
		limit = rate.Limit(applyLimit)
	}
	return &Task{
		taskID:   taskID,
		feed:     feed,
		sink:     sink,
		limiter:  rate.NewLimiter(limit, 1),
		stopCh:   make(chan struct{}),
		progress: migrate.IncrementalTaskProgress{ID: taskID},
	}
}

func (t *Task) TaskID() string { return t.taskID }

// Run captures changes until Stop is called or the feed reaches EOF.
// Transient read errors are retried with exponential backoff; any other
// error, or backoff giving up, fails the task.
func (t *Task) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-t.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	retry := backoff.NewExponentialBackOff()
	for {
		rec, err := t.feed.Next()
		if err == io.EOF {
			t.finish()
			return nil
		}
		if datafeed.IsTransient(err) {
			wait := retry.NextBackOff()
			if wait == backoff.Stop {
				return errors.Wrapf(err, "incremental task %s: gave up retrying feed", t.taskID)
			}
			log.Warnf("incremental task %s: transient feed error, retrying in %v: %v", t.taskID, wait, err)
			select {
			case <-time.After(wait):
				continue
			case <-t.stopCh:
				t.finish()
				return nil
			}
		}
		if err != nil {
			return errors.Wrapf(err, "incremental task %s: read feed", t.taskID)
		}
		retry.Reset()

		if err := t.limiter.Wait(ctx); err != nil {
			// Stop canceled the context while we were throttled.
			t.finish()
			return nil
		}
		if err := t.sink.Write([]datafeed.Record{rec}); err != nil {
			return errors.Wrapf(err, "incremental task %s: apply record", t.taskID)
		}

		t.mu.Lock()
		t.progress.Offset++
		t.progress.CapturedEvents++
		if !rec.CommitTime.IsZero() {
			t.progress.Delay = time.Since(rec.CommitTime)
		}
		t.mu.Unlock()
	}
}

// Stop closes the feed so a blocked Next unwinds, then lets Run return
// after draining whatever was already buffered.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		if err := t.feed.Close(); err != nil {
			log.Warnf("incremental task %s: close feed: %v", t.taskID, err)
		}
	})
}

func (t *Task) Progress() migrate.TaskProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *Task) finish() {
	t.mu.Lock()
	t.progress.Done = true
	t.mu.Unlock()
	log.Infof("incremental task %s finished at offset %d", t.taskID, t.progress.Offset)
}
