// Package migrate provides definitions for reshard migration jobs and tasks.
package migrate

import (
	"sync"

	"github.com/nu7hatch/gouuid"
)

// JobContext is the mutable record of one migration job: its identity,
// current status, and the two ordered task sets. Task membership is
// fixed at creation; only the status field changes afterward, and only
// through SetStatus.
type JobContext struct {
	jobID            string
	inventoryTasks   []Task
	incrementalTasks []Task

	mu     sync.RWMutex
	status JobStatus
}

// NewJobContext creates a Pending job with a generated id. The task
// slices are copied so later mutation by the caller cannot change
// membership.
func NewJobContext(inventoryTasks []Task, incrementalTasks []Task) *JobContext {
	return &JobContext{
		jobID:            generateJobID(),
		inventoryTasks:   append([]Task{}, inventoryTasks...),
		incrementalTasks: append([]Task{}, incrementalTasks...),
		status:           Pending,
	}
}

func (c *JobContext) JobID() string { return c.jobID }

func (c *JobContext) Status() JobStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetStatus moves the job to the given status if the transition table
// allows it, and reports whether the move was applied. The scheduler is
// the only caller.
func (c *JobContext) SetStatus(to JobStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.CanTransition(to) {
		return false
	}
	c.status = to
	return true
}

// InventoryTasks returns the job's inventory tasks in submission order.
// Callers must treat the slice as read-only.
func (c *JobContext) InventoryTasks() []Task { return c.inventoryTasks }

// IncrementalTasks returns the job's incremental tasks in submission order.
func (c *JobContext) IncrementalTasks() []Task { return c.incrementalTasks }

func generateJobID() string {
	id, err := uuid.NewV4()
	for err != nil {
		id, err = uuid.NewV4()
	}

	return id.String()
}
