package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mutxcli/mutx/pkg/housekeeping"
)

var housekeepCommand = &cobra.Command{
	Use:   "housekeep",
	Short: "Reclaim orphaned lock files and superseded backup artifacts",
}

func init() {
	housekeepCommand.AddCommand(housekeepLocksCommand, housekeepBackupsCommand, housekeepAllCommand)
}

// housekeepCommonConfiguration holds the flags shared by every housekeep
// subcommand.
type housekeepCommonConfiguration struct {
	recursive bool
	olderThan string
	dryRun    bool
	verbose   bool
}

func bindCommonHousekeepFlags(flags *pflag.FlagSet, configuration *housekeepCommonConfiguration) {
	flags.BoolVar(&configuration.recursive, "recursive", false, "Recurse into subdirectories")
	flags.StringVar(&configuration.olderThan, "older-than", "", "Only consider entries older than DURATION (N[s|m|h|d])")
	flags.BoolVar(&configuration.dryRun, "dry-run", false, "Report what would be cleaned without deleting anything")
	flags.BoolVar(&configuration.verbose, "verbose", false, "Print one line per affected entry")
}

func (c *housekeepCommonConfiguration) options() (housekeeping.Options, error) {
	result := housekeeping.Options{Recursive: c.recursive, DryRun: c.dryRun}
	if c.olderThan != "" {
		duration, err := ParseDuration(c.olderThan)
		if err != nil {
			return result, err
		}
		result.OlderThan = duration
	}
	return result, nil
}

func printHousekeepReport(report *housekeeping.Report, label string, verbose bool) {
	fmt.Println(report.Summary(label))
	if verbose {
		if text := report.Verbose(); text != "" {
			fmt.Println(text)
		}
	}
}
