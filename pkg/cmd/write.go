package cmd

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/filesystem"
	"github.com/mutxcli/mutx/pkg/filesystem/locking"
	"github.com/mutxcli/mutx/pkg/logging"
	"github.com/mutxcli/mutx/pkg/write"
)

// writeConfiguration holds the flags governing a write invocation. It's
// bound both on the dedicated write command and, directly, on the root
// command so that "mutx OUTPUT" works without the "write" token.
var writeConfiguration struct {
	input              string
	stream             bool
	noWait             bool
	timeout            int64
	maxPollInterval    int64
	lockFile           string
	followSymlinks     bool
	followLockSymlinks bool
	backup             bool
	backupSuffix       string
	backupTimestamp    bool
	backupDir          string
}

func bindWriteFlags(flags *pflag.FlagSet) {
	flags.StringVar(&writeConfiguration.input, "input", "", "Read input from FILE instead of standard input")
	flags.BoolVar(&writeConfiguration.stream, "stream", false, "Use streaming ingestion instead of buffering the input in memory")
	flags.BoolVar(&writeConfiguration.noWait, "no-wait", false, "Fail immediately instead of waiting if the lock is held")
	flags.Int64Var(&writeConfiguration.timeout, "timeout", 0, "Fail after this many milliseconds if the lock cannot be acquired")
	flags.Int64Var(&writeConfiguration.maxPollInterval, "max-poll-interval", 0, "Cap the backoff interval (in milliseconds) used by --timeout")
	flags.StringVar(&writeConfiguration.lockFile, "lock-file", "", "Use PATH as the lock file instead of the derived path")
	flags.BoolVar(&writeConfiguration.followSymlinks, "follow-symlinks", false, "Follow OUTPUT if it is a symbolic link instead of rejecting it")
	flags.BoolVar(&writeConfiguration.followLockSymlinks, "follow-lock-symlinks", false, "Follow the lock path if it is a symbolic link instead of rejecting it (implies --follow-symlinks)")
	flags.BoolVar(&writeConfiguration.backup, "backup", false, "Snapshot the existing OUTPUT contents before overwriting them")
	flags.StringVar(&writeConfiguration.backupSuffix, "backup-suffix", backup.DefaultSuffix, "Suffix appended to the backup artifact's filename")
	flags.BoolVar(&writeConfiguration.backupTimestamp, "backup-timestamp", false, "Include a timestamp segment in the backup artifact's filename")
	flags.StringVar(&writeConfiguration.backupDir, "backup-dir", "", "Write the backup artifact to DIR instead of beside OUTPUT")
}

func writeLockStrategy() locking.Strategy {
	switch {
	case writeConfiguration.noWait:
		return locking.NoWaitStrategy()
	case writeConfiguration.timeout > 0:
		maxPoll := time.Duration(writeConfiguration.maxPollInterval) * time.Millisecond
		return locking.TimeoutStrategy(time.Duration(writeConfiguration.timeout)*time.Millisecond, maxPoll)
	default:
		return locking.WaitStrategy()
	}
}

func writeMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("exactly one output path must be specified")
	}
	outputPath := arguments[0]

	logger := logging.NewLoggerFromEnvironment(os.Stderr)

	input := os.Stdin
	if writeConfiguration.input != "" {
		file, err := os.Open(writeConfiguration.input)
		if err != nil {
			return errors.Wrap(err, "unable to open input file")
		}
		defer file.Close()
		input = file
	} else if term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Warnf("reading from an interactive terminal; press Ctrl-D (or Ctrl-Z on Windows) to end input")
	}

	mode := filesystem.Buffered
	if writeConfiguration.stream {
		mode = filesystem.Streaming
	}

	var backupSpec *backup.Spec
	if writeConfiguration.backup {
		backupSpec = &backup.Spec{
			Suffix:            writeConfiguration.backupSuffix,
			IncludeTimestamp:  writeConfiguration.backupTimestamp,
			DirectoryOverride: writeConfiguration.backupDir,
		}
	}

	followOutput := writeConfiguration.followSymlinks || writeConfiguration.followLockSymlinks

	ctx, cancel := contextForTermination()
	defer cancel()

	result, err := write.Write(ctx, write.Request{
		OutputPath: outputPath,
		Input:      input,
		Mode:       mode,
		Lock:       writeLockStrategy(),
		Backup:     backupSpec,
		Symlinks: write.SymlinkPolicy{
			FollowOutput: followOutput,
			FollowLock:   writeConfiguration.followLockSymlinks,
		},
		LockPathOverride: writeConfiguration.lockFile,
	}, logger)
	if err != nil {
		return err
	}

	if result.Backup != nil {
		logger.Printf("backed up previous contents to %s", result.Backup.Path)
	}

	return nil
}

var writeCommand = &cobra.Command{
	Use:   "write OUTPUT",
	Short: "Atomically write input to OUTPUT under an advisory lock",
	Args:  cobra.ExactArgs(1),
	Run:   Mainify(writeMain),
}

func init() {
	flags := writeCommand.Flags()
	flags.SortFlags = false
	bindWriteFlags(flags)
}
