package incremental

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/reshard/reshard/datafeed"
	"github.com/reshard/reshard/migrate"
)

func Test_IncrementalTask_CapturesUntilFeedCloses(t *testing.T) {
	feed := datafeed.NewMemFeed(8)
	sink := datafeed.NewMemSink()
	task := NewTask("inc-1", feed, sink, 0)

	for i := 0; i < 5; i++ {
		feed.Publish(datafeed.Record{Key: "k", CommitTime: time.Now()})
	}
	feed.Close()

	if err := task.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	progress := task.Progress().(migrate.IncrementalTaskProgress)
	if !progress.Finished() {
		t.Errorf("closed feed should finish the task: %+v", progress)
	}
	if progress.CapturedEvents != 5 || progress.Offset != 5 {
		t.Errorf("expected 5 events at offset 5, got %d at %d", progress.CapturedEvents, progress.Offset)
	}
	if progress.Delay < 0 {
		t.Errorf("capture delay should be non-negative, got %v", progress.Delay)
	}
	if len(sink.Records()) != 5 {
		t.Errorf("sink should hold 5 records, got %d", len(sink.Records()))
	}
}

func Test_IncrementalTask_StopUnblocksRun(t *testing.T) {
	feed := datafeed.NewMemFeed(0)
	task := NewTask("inc-1", feed, datafeed.NewMemSink(), 0)

	errCh := make(chan error)
	go func() { errCh <- task.Run() }()

	time.Sleep(50 * time.Millisecond)
	task.Stop()
	task.Stop() // idempotent

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("stopped run should return nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("stop did not unblock the task")
	}
	if !task.Progress().Finished() {
		t.Errorf("capture ended by stop should report finished")
	}
}

// scriptedFeed plays back a fixed sequence of reads.
type scriptedFeed struct {
	mu      sync.Mutex
	results []feedResult
}

type feedResult struct {
	rec datafeed.Record
	err error
}

func (f *scriptedFeed) Next() (datafeed.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return datafeed.Record{}, io.EOF
	}
	head := f.results[0]
	f.results = f.results[1:]
	return head.rec, head.err
}

func (f *scriptedFeed) Close() error { return nil }

func Test_IncrementalTask_RetriesTransientErrors(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{
		{rec: datafeed.Record{Key: "a"}},
		{err: datafeed.Transientf("stream hiccup")},
		{rec: datafeed.Record{Key: "b"}},
	}}
	sink := datafeed.NewMemSink()
	task := NewTask("inc-1", feed, sink, 0)

	if err := task.Run(); err != nil {
		t.Fatalf("transient error should be retried, got %v", err)
	}
	if len(sink.Records()) != 2 {
		t.Errorf("expected both records applied, got %d", len(sink.Records()))
	}
	if !task.Progress().Finished() {
		t.Errorf("drained feed should finish the task")
	}
}

func Test_IncrementalTask_FailsOnFatalError(t *testing.T) {
	feed := &scriptedFeed{results: []feedResult{
		{err: errors.New("stream corrupt")},
	}}
	task := NewTask("inc-1", feed, datafeed.NewMemSink(), 0)

	err := task.Run()
	if err == nil || !strings.Contains(err.Error(), "stream corrupt") {
		t.Errorf("expected wrapped fatal error, got %v", err)
	}
	if task.Progress().Finished() {
		t.Errorf("failed task must not report finished")
	}
}
