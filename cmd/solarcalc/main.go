package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

// run builds and executes the command tree, returning the process exit
// code. Exiting here, after every RunE has returned, keeps deferred
// cleanup (browser session, log sync) on all paths.
func run() int {
	exitCode := 0

	root := &cobra.Command{
		Use:   "solarcalc",
		Short: "Rooftop solar profitability analysis",
		Long: "solarcalc drives a public PV estimation tool for a location, extracts\n" +
			"the yield figures, computes the economics and publishes the report.",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(&exitCode))
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newHistoryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return exitCode
}
