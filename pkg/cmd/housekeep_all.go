package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/housekeeping"
	"github.com/mutxcli/mutx/pkg/logging"
)

type housekeepAllFlags struct {
	housekeepCommonConfiguration
	suffix     string
	keepNewest int
	locksDir   string
	backupsDir string
}

var housekeepAllConfiguration housekeepAllFlags

func housekeepAllMain(command *cobra.Command, arguments []string) error {
	locksDir := housekeepAllConfiguration.locksDir
	backupsDir := housekeepAllConfiguration.backupsDir

	switch {
	case len(arguments) == 1:
		if locksDir != "" || backupsDir != "" {
			return errors.New("DIR cannot be combined with --locks-dir/--backups-dir")
		}
		locksDir = arguments[0]
		backupsDir = arguments[0]
	case locksDir != "" && backupsDir != "":
		// An explicit pair was given; nothing more to resolve.
	default:
		return errors.New("housekeep all requires either DIR or both --locks-dir and --backups-dir")
	}

	options, err := housekeepAllConfiguration.options()
	if err != nil {
		return err
	}
	options.KeepNewest = housekeepAllConfiguration.keepNewest

	logger := logging.NewLoggerFromEnvironment(os.Stderr)
	locksReport, backupsReport, err := housekeeping.All(locksDir, backupsDir, housekeepAllConfiguration.suffix, options, logger)
	if err != nil {
		return err
	}

	printHousekeepReport(locksReport, "lock file", housekeepAllConfiguration.verbose)
	printHousekeepReport(backupsReport, "backup file", housekeepAllConfiguration.verbose)
	return nil
}

var housekeepAllCommand = &cobra.Command{
	Use:   "all [DIR]",
	Short: "Reclaim both orphaned lock files and superseded backup artifacts",
	Args:  cobra.MaximumNArgs(1),
	Run:   Mainify(housekeepAllMain),
}

func init() {
	flags := housekeepAllCommand.Flags()
	flags.SortFlags = false
	bindCommonHousekeepFlags(flags, &housekeepAllConfiguration.housekeepCommonConfiguration)
	flags.StringVar(&housekeepAllConfiguration.suffix, "suffix", backup.DefaultSuffix, "Backup filename suffix to recognize")
	flags.IntVar(&housekeepAllConfiguration.keepNewest, "keep-newest", 0, "Retain the N most-recently-modified backups per base name")
	flags.StringVar(&housekeepAllConfiguration.locksDir, "locks-dir", "", "Directory to scan for orphaned lock files")
	flags.StringVar(&housekeepAllConfiguration.backupsDir, "backups-dir", "", "Directory to scan for superseded backup artifacts")
}
