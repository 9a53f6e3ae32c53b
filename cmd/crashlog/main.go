// crashlog - ImHex Crash Log Parser
//
// crashlog turns ImHex crash logs into short crash reports and forwards them
// to webhooks, from the command line or as an upload service.
package main

import (
	"os"

	"github.com/ccollicutt/crashlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
