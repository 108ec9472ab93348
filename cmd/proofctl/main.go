// Command proofctl is the unified CLI for proofd debugging and
// maintenance.
//
// Usage:
//
//	proofctl                Show help
//	proofctl events         JSONL event log viewer
//	proofctl stats          Pipeline statistics from the history DB
//	proofctl dict           User dictionary maintenance
package main

import (
	"fmt"
	"os"
)

const usage = `proofctl - proofd debug & maintenance CLI

Usage:
  proofctl <command> [flags]

Commands:
  events      JSONL event log viewer (tail, follow, filter)
  stats       Pass, correction, and engine statistics
  dict        User dictionary: list, add, remove

Run 'proofctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "events":
		runEvents()
	case "stats":
		runStats()
	case "dict":
		runDict()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "proofctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
