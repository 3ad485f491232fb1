package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/reshard/reshard/cli"
	"github.com/reshard/reshard/common/log/hooks"
)

// CLI binary to drive reshard migration jobs.
//	Supported commands: (see "-h" for all options)
//		run_job
//	Global flags:
// 		--log_level [<error|info|debug> level and above should be logged]

func main() {
	log.AddHook(hooks.NewContextHook())

	cl, err := cli.NewSimpleCLIClient()
	if err != nil {
		log.Fatal("Failed to create reshard CLI client: ", err)
	}

	if err := cl.Exec(); err != nil {
		log.Fatal("Error running reshard ", err)
	}
}
