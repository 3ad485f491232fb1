// +build property_test

package scheduler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/reshard/reshard/migrate"
)

// For any number of inventory tasks completing in any order, the
// incremental batch is submitted exactly once and the job finishes.
func Test_InventoryBarrier_ExactlyOnceForAnyCompletionOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("incremental phase entered exactly once", prop.ForAll(
		func(numTasks int, seed int64) bool {
			inv := make([]*fakeTask, 0, numTasks)
			for i := 0; i < numTasks; i++ {
				inv = append(inv, newFakeTask(fmt.Sprintf("inv-%d", i)))
			}
			inc := newFakeTask("inc-0")

			inventoryEngine := newCountingEngine(numTasks)
			incrementalEngine := newCountingEngine(1)
			jobCtx := migrate.NewJobContext(asTasks(inv), asTasks([]*fakeTask{inc}))
			s := NewTaskScheduler(jobCtx, inventoryEngine, incrementalEngine, nil)

			s.Start()
			for _, i := range rand.New(rand.NewSource(seed)).Perm(numTasks) {
				inv[i].finish()
			}
			waitForStatus(t, jobCtx, migrate.ExecutingIncremental)
			inc.finish()
			s.Wait()

			return jobCtx.Status() == migrate.Finished &&
				len(incrementalEngine.submissions()) == 1 &&
				len(inventoryEngine.submissions()) == numTasks
		},
		gen.IntRange(1, 8),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
