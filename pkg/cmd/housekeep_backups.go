package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/housekeeping"
	"github.com/mutxcli/mutx/pkg/logging"
)

type housekeepBackupsFlags struct {
	housekeepCommonConfiguration
	suffix     string
	keepNewest int
}

var housekeepBackupsConfiguration housekeepBackupsFlags

func housekeepBackupsMain(command *cobra.Command, arguments []string) error {
	dir := "."
	if len(arguments) == 1 {
		dir = arguments[0]
	}

	options, err := housekeepBackupsConfiguration.options()
	if err != nil {
		return err
	}
	options.KeepNewest = housekeepBackupsConfiguration.keepNewest

	logger := logging.NewLoggerFromEnvironment(os.Stderr)
	report, err := housekeeping.Backups(dir, housekeepBackupsConfiguration.suffix, options, logger)
	if err != nil {
		return err
	}

	printHousekeepReport(report, "backup file", housekeepBackupsConfiguration.verbose)
	return nil
}

var housekeepBackupsCommand = &cobra.Command{
	Use:   "backups [DIR]",
	Short: "Reclaim superseded backup artifacts",
	Args:  cobra.MaximumNArgs(1),
	Run:   Mainify(housekeepBackupsMain),
}

func init() {
	flags := housekeepBackupsCommand.Flags()
	flags.SortFlags = false
	bindCommonHousekeepFlags(flags, &housekeepBackupsConfiguration.housekeepCommonConfiguration)
	flags.StringVar(&housekeepBackupsConfiguration.suffix, "suffix", backup.DefaultSuffix, "Backup filename suffix to recognize")
	flags.IntVar(&housekeepBackupsConfiguration.keepNewest, "keep-newest", 0, "Retain the N most-recently-modified backups per base name")
}
