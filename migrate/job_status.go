package migrate

// JobStatus is the state of a migration job as a whole.
type JobStatus int

const (
	// Created but not yet driven by a scheduler.
	Pending JobStatus = iota

	// Inventory (full snapshot) tasks are in flight.
	ExecutingInventory

	// Incremental (change capture) tasks are in flight.
	ExecutingIncremental

	// Stop was requested, tasks are winding down cooperatively.
	Stopping

	// States below are end states.
	// A job in an end state never changes status again.

	// Stopped by request before the job ran to completion.
	Stopped

	// Both phases ran to completion.
	Finished

	// An inventory task failed; the job was aborted.
	InventoryFailed

	// An incremental task failed; the job was aborted.
	IncrementalFailed
)

// IsRunning reports whether Stop() should move the job to Stopping.
// Stopping itself is still "running": re-stopping an already stopping
// job re-asserts Stopping, which is a legal self-transition.
func (s JobStatus) IsRunning() bool {
	return s == Pending || s == ExecutingInventory || s == ExecutingIncremental || s == Stopping
}

// Terminal reports whether the job can never change status again.
func (s JobStatus) Terminal() bool {
	return s == Stopped || s == Finished || s == InventoryFailed || s == IncrementalFailed
}

// validTransitions is the total transition table. A status absent from
// the map (every terminal status) admits no transitions at all.
var validTransitions = map[JobStatus][]JobStatus{
	Pending:              {ExecutingInventory, ExecutingIncremental, Stopping},
	ExecutingInventory:   {ExecutingIncremental, Stopping, InventoryFailed},
	ExecutingIncremental: {Stopping, Finished, IncrementalFailed},
	Stopping:             {Stopping, Stopped, InventoryFailed, IncrementalFailed},
}

// CanTransition reports whether moving from s to the given status is legal.
func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s JobStatus) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case ExecutingInventory:
		return "EXECUTING_INVENTORY"
	case ExecutingIncremental:
		return "EXECUTING_INCREMENTAL"
	case Stopping:
		return "STOPPING"
	case Stopped:
		return "STOPPED"
	case Finished:
		return "FINISHED"
	case InventoryFailed:
		return "INVENTORY_FAILED"
	case IncrementalFailed:
		return "INCREMENTAL_FAILED"
	default:
		return "UNKNOWN"
	}
}
