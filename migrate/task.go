package migrate

import (
	"time"
)

// Task is one unit of migration work. A job owns two ordered sets of
// tasks, one per phase; the scheduler only borrows them.
//
// Run blocks on the calling goroutine until the task completes, fails,
// or observes Stop. Completion is reported to the scheduler through the
// execution engine's callback, never by Run's caller inspecting state.
type Task interface {
	TaskID() string

	// Run performs the task's work. Unbounded duration.
	Run() error

	// Stop requests cooperative cancellation. Idempotent, non-blocking,
	// and safe to call before Run or after completion.
	Stop()

	// Progress returns an immutable snapshot of the task's progress.
	// Safe to call concurrently with Run and Stop.
	Progress() TaskProgress
}

// TaskProgress is a point-in-time snapshot of one task's progress.
type TaskProgress interface {
	TaskID() string

	// Finished reports whether the task's work is done. For inventory
	// tasks this means the snapshot is fully transferred; a task stopped
	// midway is not finished.
	Finished() bool
}

// InventoryTaskProgress is the progress payload of a snapshot task.
type InventoryTaskProgress struct {
	ID              string
	EstimatedRows   int64
	TransferredRows int64
	Done            bool
}

func (p InventoryTaskProgress) TaskID() string { return p.ID }

func (p InventoryTaskProgress) Finished() bool { return p.Done }

// IncrementalTaskProgress is the progress payload of a change capture
// task. Offset is the position in the change feed up to which events
// have been applied; Delay is how far capture lags the feed's head.
type IncrementalTaskProgress struct {
	ID             string
	Offset         int64
	CapturedEvents int64
	Delay          time.Duration
	Done           bool
}

func (p IncrementalTaskProgress) TaskID() string { return p.ID }

func (p IncrementalTaskProgress) Finished() bool { return p.Done }

// AllTasksFinished reports whether every task's progress is terminal.
// Vacuously true for an empty set.
func AllTasksFinished(tasks []Task) bool {
	for _, t := range tasks {
		if !t.Progress().Finished() {
			return false
		}
	}
	return true
}
