package migrate

import (
	"testing"
)

var allStatuses = []JobStatus{
	Pending, ExecutingInventory, ExecutingIncremental, Stopping,
	Stopped, Finished, InventoryFailed, IncrementalFailed,
}

func Test_JobStatus_RunningPartition(t *testing.T) {
	running := map[JobStatus]bool{
		Pending:              true,
		ExecutingInventory:   true,
		ExecutingIncremental: true,
		Stopping:             true,
	}
	for _, s := range allStatuses {
		if s.IsRunning() != running[s] {
			t.Errorf("expected IsRunning()=%v for %v", running[s], s)
		}
		if s.Terminal() == s.IsRunning() {
			t.Errorf("status %v cannot be both running and terminal", s)
		}
	}
}

func Test_JobStatus_TerminalStatesAdmitNoExits(t *testing.T) {
	for _, s := range allStatuses {
		if !s.Terminal() {
			continue
		}
		for _, to := range allStatuses {
			if s.CanTransition(to) {
				t.Errorf("terminal status %v must not transition to %v", s, to)
			}
		}
	}
}

func Test_JobStatus_Transitions(t *testing.T) {
	// Spot check the paths the scheduler takes.
	path := []JobStatus{Pending, ExecutingInventory, ExecutingIncremental, Finished}
	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransition(path[i+1]) {
			t.Errorf("expected %v -> %v to be legal", path[i], path[i+1])
		}
	}

	if !Pending.CanTransition(ExecutingIncremental) {
		t.Errorf("fast path Pending -> ExecutingIncremental must be legal")
	}
	if !Stopping.CanTransition(Stopping) {
		t.Errorf("re-stopping a stopping job must be legal")
	}
	if !Stopping.CanTransition(Stopped) {
		t.Errorf("expected Stopping -> Stopped to be legal")
	}
	if Stopping.CanTransition(ExecutingIncremental) {
		t.Errorf("a stopping job must not enter the incremental phase")
	}
	if ExecutingIncremental.CanTransition(ExecutingInventory) {
		t.Errorf("phases must not run backwards")
	}
}

func Test_JobStatus_EveryStatusHasAName(t *testing.T) {
	for _, s := range allStatuses {
		if s.String() == "UNKNOWN" {
			t.Errorf("status %d has no name", int(s))
		}
	}
}
