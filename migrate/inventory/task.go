// Package inventory implements the bounded snapshot task of a migration
// job: drain one Source chunk by chunk into the Sink, then report the
// snapshot finished.
package inventory

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"

	"github.com/reshard/reshard/datafeed"
	"github.com/reshard/reshard/migrate"
)

type Task struct {
	taskID string
	source datafeed.Source
	sink   datafeed.Sink

	stopOnce sync.Once
	stopCh   chan struct{}

	mu       sync.Mutex
	progress migrate.InventoryTaskProgress
}

var _ migrate.Task = (*Task)(nil)

func NewTask(taskID string, source datafeed.Source, sink datafeed.Sink) *Task {
	return &Task{
		taskID: taskID,
		source: source,
		sink:   sink,
		stopCh: make(chan struct{}),
		progress: migrate.InventoryTaskProgress{
			ID:            taskID,
			EstimatedRows: source.EstimatedRows(),
		},
	}
}

func (t *Task) TaskID() string { return t.taskID }

// Run transfers the snapshot one chunk at a time, checking for a stop
// request between chunks. A stopped run returns nil with its progress
// left unfinished; only an exhausted source marks the task finished.
func (t *Task) Run() error {
	for {
		select {
		case <-t.stopCh:
			log.Infof("inventory task %s stopped before finishing", t.taskID)
			return nil
		default:
		}

		chunk, err := t.source.NextChunk()
		if err == io.EOF {
			t.finish()
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "inventory task %s: read chunk", t.taskID)
		}
		if err := t.sink.Write(chunk); err != nil {
			return errors.Wrapf(err, "inventory task %s: write chunk", t.taskID)
		}

		t.mu.Lock()
		t.progress.TransferredRows += int64(len(chunk))
		t.mu.Unlock()
	}
}

// Stop requests cooperative cancellation. Safe before Run and after
// completion, and safe to call repeatedly.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
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
	log.Infof("inventory task %s finished, %d rows", t.taskID, t.progress.TransferredRows)
}
