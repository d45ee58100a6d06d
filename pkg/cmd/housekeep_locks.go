package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mutxcli/mutx/pkg/housekeeping"
	"github.com/mutxcli/mutx/pkg/lockpath"
	"github.com/mutxcli/mutx/pkg/logging"
)

var housekeepLocksConfiguration housekeepCommonConfiguration

func housekeepLocksMain(command *cobra.Command, arguments []string) error {
	dir, err := housekeepLocksDirectory(arguments)
	if err != nil {
		return err
	}

	options, err := housekeepLocksConfiguration.options()
	if err != nil {
		return err
	}

	logger := logging.NewLoggerFromEnvironment(os.Stderr)
	report, err := housekeeping.Locks(dir, options, logger)
	if err != nil {
		return err
	}

	printHousekeepReport(report, "lock file", housekeepLocksConfiguration.verbose)
	return nil
}

// housekeepLocksDirectory returns the explicit DIR argument if given, or
// else the default lock cache directory the same derivation logic used by
// "write" resolves lock paths under.
func housekeepLocksDirectory(arguments []string) (string, error) {
	if len(arguments) == 1 {
		return arguments[0], nil
	}
	return lockpath.LocksDirectory()
}

var housekeepLocksCommand = &cobra.Command{
	Use:   "locks [DIR]",
	Short: "Reclaim orphaned lock files",
	Args:  cobra.MaximumNArgs(1),
	Run:   Mainify(housekeepLocksMain),
}

func init() {
	flags := housekeepLocksCommand.Flags()
	flags.SortFlags = false
	bindCommonHousekeepFlags(flags, &housekeepLocksConfiguration)
}
