package main

import (
	"fmt"
	"os"

	"github.com/roach88/logicsim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "logicsim:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
