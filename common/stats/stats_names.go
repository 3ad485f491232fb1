package stats

// Instrument names, collected here so dashboards have one place to look.
const (
	// Engine stats
	EngineSubmittedCounter = "submittedCounter"
	EngineSucceededCounter = "succeededCounter"
	EngineFailedCounter    = "failedCounter"
	EngineRunLatency_ms    = "runLatency_ms"

	// Scheduler stats
	SchedJobStatusGauge           = "jobStatusGauge"
	SchedInventorySubmitCounter   = "inventorySubmitCounter"
	SchedIncrementalSubmitCounter = "incrementalSubmitCounter"
	SchedTaskFailureCounter       = "taskFailureCounter"
	SchedStopCounter              = "stopCounter"
	SchedJobLatency_ms            = "jobLatency_ms"
)
