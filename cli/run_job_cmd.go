package cli

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luci/go-render/render"
	"github.com/spf13/cobra"

	"github.com/reshard/reshard/common/stats"
	"github.com/reshard/reshard/datafeed"
	"github.com/reshard/reshard/execute"
	"github.com/reshard/reshard/migrate"
	"github.com/reshard/reshard/migrate/incremental"
	"github.com/reshard/reshard/migrate/inventory"
	"github.com/reshard/reshard/migrate/scheduler"
)

// runJobCmd runs a demo migration over in-memory data: a snapshot split
// into inventory tasks, then a change feed captured until it runs dry.
type runJobCmd struct {
	inventoryTasks     int
	chunksPerTask      int
	rowsPerChunk       int
	incrementalEvents  int
	inventoryWorkers   int
	incrementalWorkers int
	applyRate          float64
	stopAfter          time.Duration
}

func (c *runJobCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "run_job",
		Short: "Run a demo migration job over in-memory data",
	}
	r.Flags().IntVar(&c.inventoryTasks, "inventory_tasks", 4, "number of inventory (snapshot) tasks")
	r.Flags().IntVar(&c.chunksPerTask, "chunks", 8, "snapshot chunks per inventory task")
	r.Flags().IntVar(&c.rowsPerChunk, "rows_per_chunk", 100, "rows per snapshot chunk")
	r.Flags().IntVar(&c.incrementalEvents, "incremental_events", 200, "change events to publish before the feed closes")
	r.Flags().IntVar(&c.inventoryWorkers, "inventory_workers", 2, "inventory engine worker count")
	r.Flags().IntVar(&c.incrementalWorkers, "incremental_workers", 2, "incremental engine worker count")
	r.Flags().Float64Var(&c.applyRate, "apply_rate", 0, "max change records applied per second (0 = unlimited)")
	r.Flags().DurationVar(&c.stopAfter, "stop_after", 0, "stop the job after this duration (0 = run until the feed closes)")
	return r
}

func (c *runJobCmd) run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error {
	if level, err := log.ParseLevel(cl.logLevel); err == nil {
		log.SetLevel(level)
	}

	stat := stats.DefaultStatsReceiver()
	sink := datafeed.NewMemSink()

	inventoryTasks := make([]migrate.Task, 0, c.inventoryTasks)
	for i := 0; i < c.inventoryTasks; i++ {
		source := genSource(i, c.chunksPerTask, c.rowsPerChunk)
		inventoryTasks = append(inventoryTasks, inventory.NewTask(fmt.Sprintf("inv-%d", i), source, sink))
	}

	feed := datafeed.NewMemFeed(c.incrementalEvents)
	incrementalTasks := []migrate.Task{
		incremental.NewTask("inc-0", feed, sink, c.applyRate),
	}

	jobCtx := migrate.NewJobContext(inventoryTasks, incrementalTasks)
	sched := scheduler.NewTaskScheduler(
		jobCtx,
		execute.NewEngine("inventory", c.inventoryWorkers, stat),
		execute.NewEngine("incremental", c.incrementalWorkers, stat),
		stat)

	// Simulated change stream: publish events while the job runs, then
	// close the feed so capture ends on its own.
	go func() {
		for i := 0; i < c.incrementalEvents; i++ {
			feed.Publish(datafeed.Record{
				Key:        fmt.Sprintf("change-%d", i),
				Value:      []byte("v"),
				CommitTime: time.Now(),
			})
		}
		feed.Close()
	}()

	sched.Start()
	if c.stopAfter > 0 {
		time.AfterFunc(c.stopAfter, sched.Stop)
	}

	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			log.Infof("job %s status %s", jobCtx.JobID(), jobCtx.Status())
			log.Debugf("inventory progress: %s", render.Render(sched.InventoryProgress()))
			log.Debugf("incremental progress: %s", render.Render(sched.IncrementalProgress()))
		case <-done:
			log.Infof("job %s ended with status %s, %d records migrated", jobCtx.JobID(), jobCtx.Status(), len(sink.Records()))
			log.Infof("stats: %s", stat.Render(true))
			return nil
		}
	}
}

func genSource(task, chunks, rowsPerChunk int) *datafeed.MemSource {
	data := make([][]datafeed.Record, 0, chunks)
	for c := 0; c < chunks; c++ {
		chunk := make([]datafeed.Record, 0, rowsPerChunk)
		for r := 0; r < rowsPerChunk; r++ {
			chunk = append(chunk, datafeed.Record{
				Key:   fmt.Sprintf("row-%d-%d-%d", task, c, r),
				Value: []byte("v"),
			})
		}
		data = append(data, chunk)
	}
	return datafeed.NewMemSource(data)
}
