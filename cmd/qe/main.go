// Command qe compiles JSON boolean queries into SQL predicates.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qengine/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.WasReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
