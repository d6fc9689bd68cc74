// Command catlogctl checks, inspects and exercises catlog configuration
// files.
package main

import (
	"fmt"
	"os"

	_ "github.com/spaceweasel/catlog/appenders/influxappender"
	_ "github.com/spaceweasel/catlog/appenders/mqttappender"
	_ "github.com/spaceweasel/catlog/appenders/sqlappender"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
