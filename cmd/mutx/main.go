package main

import (
	"os"

	"github.com/mutxcli/mutx/pkg/cmd"
)

func main() {
	// Execute the root command. Entry points handle their own errors (and
	// exit codes) via cmd.Mainify; an error here means Cobra itself failed
	// during argument or flag parsing, before any entry point ran.
	if err := cmd.NewMutxCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
