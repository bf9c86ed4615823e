// Command qcore-bench drives the sharder, unsharder, and post-construction
// engine against an in-memory fake store, the way pilosa-bench drives a
// live cluster with synthetic queries — except qcore has no server to
// dial, so this tool exercises the core directly and reports what a real
// integration would otherwise hide inside network round trips.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rc := &cobra.Command{
		Use:   "qcore-bench",
		Short: "Exercise qcore's sharder, unsharder, and post-construction engine.",
		Long: `qcore-bench is a smoke-test harness: it shards a request across a
configurable number of CPU shards, fabricates one response per shard from
an in-memory fake store, unshards them back into a single logical
response, and reports whether the round trip reproduced what was written.
It also drives one post-construction run end to end.`,
	}
	rc.AddCommand(newRangeReadCommand())
	rc.AddCommand(newWriteCommand())
	rc.AddCommand(newPostConstructCommand())
	return rc
}
