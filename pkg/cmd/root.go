package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutxcli/mutx/pkg/mutx"
)

func rootMain(command *cobra.Command, arguments []string) error {
	// --version and --legal are ambient CLI furniture, checked before
	// anything else regardless of whether an implicit write was also
	// attempted.
	if rootConfiguration.version {
		fmt.Println(mutx.Version)
		return nil
	}
	if rootConfiguration.legal {
		fmt.Println(mutx.LegalNotice)
		return nil
	}

	// A bare positional argument is an implicit "write OUTPUT" invocation;
	// no commands at all just shows help.
	if len(arguments) == 1 {
		return writeMain(command, arguments)
	}
	return command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "mutx [OUTPUT]",
	Short: "mutx performs crash-safe atomic file writes under cross-process advisory locks",
	Args:  cobra.MaximumNArgs(1),
	Run:   Mainify(rootMain),
}

var rootConfiguration struct {
	// help indicates whether or not help information should be shown for the
	// command.
	help bool
	// version indicates whether or not version information should be shown.
	version bool
	// legal indicates whether or not legal information should be shown.
	legal bool
}

func init() {
	flags := rootCommand.Flags()
	flags.SortFlags = false

	// The root command accepts every write flag directly so that "mutx
	// [OPTIONS] OUTPUT" works without the "write" token.
	bindWriteFlags(flags)

	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVar(&rootConfiguration.version, "version", false, "Show version information")
	flags.BoolVar(&rootConfiguration.legal, "legal", false, "Show legal information")

	// Disable Cobra's command sorting behavior. By default, it sorts
	// commands alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap, which enforces that the CLI only be
	// launched from a console on Windows.
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(writeCommand, housekeepCommand)
}

// NewMutxCommand constructs the root mutx command tree.
func NewMutxCommand() *cobra.Command {
	return rootCommand
}
