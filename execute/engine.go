// Package execute provides the asynchronous engines that run migration
// tasks. An engine accepts (task, callback) pairs, runs each task on a
// worker goroutine, and reports exactly one completion per task.
package execute

//go:generate mockgen -source=engine.go -package=execute -destination=engine_mock.go

import (
	log "github.com/sirupsen/logrus"

	"github.com/pkg/errors"

	"github.com/reshard/reshard/common/stats"
	"github.com/reshard/reshard/migrate"
)

// Callback is notified exactly once per submitted task, on the worker
// goroutine that ran it, never synchronously from Submit.
type Callback interface {
	OnSuccess(task migrate.Task)
	OnFailure(task migrate.Task, err error)
}

// Engine runs tasks asynchronously.
type Engine interface {
	// Submit schedules the task onto a worker and returns immediately.
	// No ordering is guaranteed between tasks submitted in one batch.
	Submit(task migrate.Task, cb Callback)
}

// NewEngine returns an Engine running at most workers tasks at once.
// Submissions beyond that wait on a worker slot without blocking the
// submitter. One engine instance should serve each migration phase so
// the two phases cannot starve each other's pool.
func NewEngine(name string, workers int, stat stats.StatsReceiver) Engine {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	if workers <= 0 {
		workers = 1
	}
	return &poolEngine{
		name:    name,
		workers: make(chan struct{}, workers),
		stat:    stat.Scope("engine", name),
	}
}

type poolEngine struct {
	name    string
	workers chan struct{}
	stat    stats.StatsReceiver
}

func (e *poolEngine) Submit(task migrate.Task, cb Callback) {
	e.stat.Counter(stats.EngineSubmittedCounter).Inc(1)
	go func() {
		e.workers <- struct{}{}
		defer func() { <-e.workers }()
		defer e.stat.Latency(stats.EngineRunLatency_ms).Time().Stop()

		err := runTask(task)
		if err != nil {
			log.Errorf("engine %s: task %s failed: %v", e.name, task.TaskID(), err)
			e.stat.Counter(stats.EngineFailedCounter).Inc(1)
			cb.OnFailure(task, err)
			return
		}
		e.stat.Counter(stats.EngineSucceededCounter).Inc(1)
		cb.OnSuccess(task)
	}()
}

// runTask invokes task.Run, converting an escaping panic into an error
// so the one-completion-per-task contract holds even for buggy tasks.
func runTask(task migrate.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task %s panicked: %v", task.TaskID(), r)
		}
	}()
	return task.Run()
}
