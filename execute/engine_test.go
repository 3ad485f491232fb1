package execute

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/reshard/reshard/migrate"
)

// blockingTask runs until released, tracking peak concurrency.
type blockingTask struct {
	id        string
	releaseCh chan struct{}
	runErr    error
	doPanic   bool

	running *int32
	peak    *int32
}

func (t *blockingTask) TaskID() string { return t.id }

func (t *blockingTask) Run() error {
	if t.running != nil {
		n := atomic.AddInt32(t.running, 1)
		for {
			p := atomic.LoadInt32(t.peak)
			if n <= p || atomic.CompareAndSwapInt32(t.peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(t.running, -1)
	}
	if t.releaseCh != nil {
		<-t.releaseCh
	}
	if t.doPanic {
		panic("task blew up")
	}
	return t.runErr
}

func (t *blockingTask) Stop() {}

func (t *blockingTask) Progress() migrate.TaskProgress {
	return migrate.InventoryTaskProgress{ID: t.id}
}

// recordingCallback collects completions for assertions.
type recordingCallback struct {
	mu        sync.Mutex
	successes []string
	failures  map[string]error
	signalCh  chan struct{}
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{failures: map[string]error{}, signalCh: make(chan struct{}, 64)}
}

func (cb *recordingCallback) OnSuccess(task migrate.Task) {
	cb.mu.Lock()
	cb.successes = append(cb.successes, task.TaskID())
	cb.mu.Unlock()
	cb.signalCh <- struct{}{}
}

func (cb *recordingCallback) OnFailure(task migrate.Task, err error) {
	cb.mu.Lock()
	cb.failures[task.TaskID()] = err
	cb.mu.Unlock()
	cb.signalCh <- struct{}{}
}

func (cb *recordingCallback) await(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-cb.signalCh:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for completion %d of %d", i+1, n)
		}
	}
}

func Test_Engine_ReportsSuccessOnce(t *testing.T) {
	engine := NewEngine("test", 1, nil)
	cb := newRecordingCallback()

	engine.Submit(&blockingTask{id: "t1"}, cb)
	cb.await(t, 1)

	if len(cb.successes) != 1 || cb.successes[0] != "t1" {
		t.Errorf("expected one success for t1, got %v", cb.successes)
	}
	if len(cb.failures) != 0 {
		t.Errorf("expected no failures, got %v", cb.failures)
	}
}

func Test_Engine_ReportsFailureWithCause(t *testing.T) {
	engine := NewEngine("test", 1, nil)
	cb := newRecordingCallback()

	engine.Submit(&blockingTask{id: "t1", runErr: errors.New("read failed")}, cb)
	cb.await(t, 1)

	if err := cb.failures["t1"]; err == nil || err.Error() != "read failed" {
		t.Errorf("expected failure cause 'read failed', got %v", err)
	}
	if len(cb.successes) != 0 {
		t.Errorf("failed task must not also report success: %v", cb.successes)
	}
}

func Test_Engine_CapturesPanicAsFailure(t *testing.T) {
	engine := NewEngine("test", 1, nil)
	cb := newRecordingCallback()

	engine.Submit(&blockingTask{id: "t1", doPanic: true}, cb)
	cb.await(t, 1)

	err := cb.failures["t1"]
	if err == nil || !strings.Contains(err.Error(), "task blew up") {
		t.Errorf("expected panic cause in failure, got %v", err)
	}
}

func Test_Engine_BoundsConcurrency(t *testing.T) {
	engine := NewEngine("test", 2, nil)
	cb := newRecordingCallback()

	var running, peak int32
	releaseCh := make(chan struct{})
	for i := 0; i < 6; i++ {
		engine.Submit(&blockingTask{
			id:        "t",
			releaseCh: releaseCh,
			running:   &running,
			peak:      &peak,
		}, cb)
	}

	time.Sleep(100 * time.Millisecond)
	close(releaseCh)
	cb.await(t, 6)

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("engine ran %d tasks concurrently, want <= 2", p)
	}
	if len(cb.successes) != 6 {
		t.Errorf("expected 6 successes, got %d", len(cb.successes))
	}
}
