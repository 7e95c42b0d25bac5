// Command mathtables is a timed multiplication game for the terminal and
// the browser.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mathtables/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
