// Package scheduler drives one migration job through its two phases:
// a bounded inventory (full snapshot) phase followed by an unbounded
// incremental (change capture) phase.
//
// Concurrency: Start launches one coordinating goroutine per scheduler.
// Engine workers report completions as explicit messages into that
// goroutine's channel, so every phase decision and status mutation is
// serialized there. The two phase entry points additionally share one
// mutex, keeping their evaluate-then-submit sequences atomic even if
// entered directly from another goroutine.
package scheduler

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/reshard/reshard/common/stats"
	"github.com/reshard/reshard/execute"
	"github.com/reshard/reshard/migrate"
)

type phase int

const (
	inventoryPhase phase = iota
	incrementalPhase
)

func (p phase) String() string {
	if p == inventoryPhase {
		return "inventory"
	}
	return "incremental"
}

// taskCompletion is the message an engine callback sends the
// coordinating loop when a task's Run has returned.
type taskCompletion struct {
	phase  phase
	taskID string
	err    error
}

// TaskScheduler owns the run loop, the phase barrier, fail-fast
// cancellation, and progress read-out for one migration job. Its public
// surface is Start, Stop, Wait and the two progress accessors.
type TaskScheduler struct {
	jobCtx            *migrate.JobContext
	inventoryEngine   execute.Engine
	incrementalEngine execute.Engine
	stat              stats.StatsReceiver

	// mu serializes the two phase entry points with each other.
	mu           sync.Mutex
	completionCh chan taskCompletion
	doneCh       chan struct{}
}

// NewTaskScheduler borrows the job context; the context's creator keeps
// ownership of the tasks. Separate engines serve the two phases so
// neither can starve the other's worker pool.
func NewTaskScheduler(jobCtx *migrate.JobContext, inventoryEngine, incrementalEngine execute.Engine, stat stats.StatsReceiver) *TaskScheduler {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	total := len(jobCtx.InventoryTasks()) + len(jobCtx.IncrementalTasks())
	return &TaskScheduler{
		jobCtx:            jobCtx,
		inventoryEngine:   inventoryEngine,
		incrementalEngine: incrementalEngine,
		stat:              stat.Scope("sched"),
		// Buffered to the job's task count so a callback can never block
		// an engine worker, even after the loop has exited.
		completionCh: make(chan taskCompletion, total),
		doneCh:       make(chan struct{}),
	}
}

// Start launches the coordinating loop and returns immediately. At most
// one Start per scheduler; the caller must not call it twice.
func (s *TaskScheduler) Start() {
	go s.run()
}

// Wait blocks until the job reaches a terminal status or runs out of
// work. Stopped tasks wind down cooperatively and may still be
// unwinding when Wait returns.
func (s *TaskScheduler) Wait() {
	<-s.doneCh
}

// Stop moves a running job to Stopping and sweeps a cooperative stop
// across every task, inventory first, in collection order. Each task's
// stop is independent of its siblings'. Safe to call at any time from
// any goroutine, including before Start and on a job that already
// ended; never an error.
func (s *TaskScheduler) Stop() {
	log.Infof("stopping migration job %s", s.jobCtx.JobID())
	s.stat.Counter(stats.SchedStopCounter).Inc(1)
	if s.jobCtx.Status().IsRunning() {
		s.setStatus(migrate.Stopping)
	}
	for _, task := range s.jobCtx.InventoryTasks() {
		log.Infof("stopping inventory task %s - %s", s.jobCtx.JobID(), task.TaskID())
		task.Stop()
	}
	for _, task := range s.jobCtx.IncrementalTasks() {
		log.Infof("stopping incremental task %s - %s", s.jobCtx.JobID(), task.TaskID())
		task.Stop()
	}
}

// InventoryProgress snapshots every inventory task's progress in
// collection order. Safe at any time, concurrently with the phases.
func (s *TaskScheduler) InventoryProgress() []migrate.TaskProgress {
	return progressOf(s.jobCtx.InventoryTasks())
}

// IncrementalProgress snapshots every incremental task's progress in
// collection order.
func (s *TaskScheduler) IncrementalProgress() []migrate.TaskProgress {
	return progressOf(s.jobCtx.IncrementalTasks())
}

func progressOf(tasks []migrate.Task) []migrate.TaskProgress {
	progress := make([]migrate.TaskProgress, 0, len(tasks))
	for _, t := range tasks {
		progress = append(progress, t.Progress())
	}
	return progress
}

// run drives the job: inventory phase first, straight to incremental if
// the inventory barrier is already satisfied, then completions until
// the job ends. Everything after the initial fan-out is completion
// driven.
func (s *TaskScheduler) run() {
	defer close(s.doneCh)
	defer s.stat.Latency(stats.SchedJobLatency_ms).Time().Stop()
	log.Infof("starting migration job %s", s.jobCtx.JobID())

	outstanding := 0
	if complete, submitted := s.executeInventoryTasks(); complete {
		outstanding += s.executeIncrementalTasks()
	} else {
		outstanding += submitted
	}

	for outstanding > 0 && !s.jobCtx.Status().Terminal() {
		completion := <-s.completionCh
		outstanding--
		outstanding += s.handleCompletion(completion)
	}
	log.Infof("migration job %s loop done, status %s", s.jobCtx.JobID(), s.jobCtx.Status())
}

// executeInventoryTasks evaluates the inventory barrier and reports
// whether the phase is already complete. If not, it fans every
// inventory task out to the inventory engine with a shared callback and
// reports how many it submitted. The barrier check and the fan-out are
// one atomic step relative to the incremental entry point.
func (s *TaskScheduler) executeInventoryTasks() (complete bool, submitted int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if migrate.AllTasksFinished(s.jobCtx.InventoryTasks()) {
		log.Infof("job %s: all inventory tasks finished", s.jobCtx.JobID())
		return true, 0
	}
	if !s.setStatus(migrate.ExecutingInventory) {
		// Stopped (or ended) before the phase began; submit nothing.
		log.Infof("job %s: not entering inventory phase from status %s", s.jobCtx.JobID(), s.jobCtx.Status())
		return false, 0
	}

	cb := &phaseCallback{phase: inventoryPhase, completionCh: s.completionCh}
	for _, task := range s.jobCtx.InventoryTasks() {
		s.inventoryEngine.Submit(task, cb)
		submitted++
	}
	s.stat.Counter(stats.SchedInventorySubmitCounter).Inc(int64(submitted))
	log.Infof("job %s: submitted %d inventory tasks", s.jobCtx.JobID(), submitted)
	return false, submitted
}

// executeIncrementalTasks enters the incremental phase at most once,
// returning how many tasks it submitted. The status guard makes double
// entry (run loop racing a completion, or a direct concurrent call) a
// no-op, and the transition table blocks entry from Stopping or any
// terminal status.
func (s *TaskScheduler) executeIncrementalTasks() (submitted int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobCtx.Status() == migrate.ExecutingIncremental {
		return 0
	}
	if !s.setStatus(migrate.ExecutingIncremental) {
		log.Infof("job %s: not entering incremental phase from status %s", s.jobCtx.JobID(), s.jobCtx.Status())
		return 0
	}

	cb := &phaseCallback{phase: incrementalPhase, completionCh: s.completionCh}
	for _, task := range s.jobCtx.IncrementalTasks() {
		s.incrementalEngine.Submit(task, cb)
		submitted++
	}
	s.stat.Counter(stats.SchedIncrementalSubmitCounter).Inc(int64(submitted))
	log.Infof("job %s: submitted %d incremental tasks", s.jobCtx.JobID(), submitted)
	return submitted
}

// handleCompletion applies one task completion to the job and returns
// how many new tasks it submitted. Runs only on the loop goroutine.
func (s *TaskScheduler) handleCompletion(c taskCompletion) int {
	if c.err != nil {
		log.Errorf("%s task %s failed: %v", c.phase, c.taskID, c.err)
		s.stat.Counter(stats.SchedTaskFailureCounter).Inc(1)
		s.Stop()
		if c.phase == inventoryPhase {
			s.setStatus(migrate.InventoryFailed)
		} else {
			s.setStatus(migrate.IncrementalFailed)
		}
		return 0
	}

	switch c.phase {
	case inventoryPhase:
		// Whichever completion satisfies the barrier advances the phase;
		// earlier completions fall through as no-ops.
		if migrate.AllTasksFinished(s.jobCtx.InventoryTasks()) {
			log.Infof("job %s: all inventory tasks finished", s.jobCtx.JobID())
			return s.executeIncrementalTasks()
		}
	case incrementalPhase:
		// Incremental tasks return only once capture is over (stopped, or
		// the feed closed at the source), so the first completion already
		// ends the job. No sibling barrier here.
		if s.jobCtx.Status() == migrate.Stopping {
			s.setStatus(migrate.Stopped)
		} else {
			s.setStatus(migrate.Finished)
		}
	}
	return 0
}

func (s *TaskScheduler) setStatus(to migrate.JobStatus) bool {
	if !s.jobCtx.SetStatus(to) {
		return false
	}
	log.Infof("job %s status -> %s", s.jobCtx.JobID(), to)
	s.stat.Gauge(stats.SchedJobStatusGauge).Update(int64(to))
	return true
}

// phaseCallback forwards engine completions to the coordinating loop as
// messages, so no status is mutated from an engine worker goroutine.
// One shared instance serves a whole submission batch.
type phaseCallback struct {
	phase        phase
	completionCh chan<- taskCompletion
}

func (cb *phaseCallback) OnSuccess(task migrate.Task) {
	cb.completionCh <- taskCompletion{phase: cb.phase, taskID: task.TaskID()}
}

func (cb *phaseCallback) OnFailure(task migrate.Task, err error) {
	cb.completionCh <- taskCompletion{phase: cb.phase, taskID: task.TaskID(), err: err}
}
