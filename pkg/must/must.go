// Package must provides best-effort cleanup helpers: operations whose
// failure should be logged but must never mask the error already in flight
// at a defer site (closing a file after a write already failed, unlocking a
// lock whose holder is already returning an error, and so on).
package must

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mutxcli/mutx/pkg/logging"
)

// Close closes c, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// Unlock releases locker, logging a warning on failure.
func Unlock(locker interface{ Unlock() error }, logger *logging.Logger) {
	if err := locker.Unlock(); err != nil {
		logger.Warnf("unable to unlock locker: %s", err.Error())
	}
}

// OSRemove removes the named file, logging a warning on failure. Callers
// that need NotFound to be silent even at the warn level (the housekeeper's
// TOCTOU-tolerant deletions) should not use this helper; see
// pkg/housekeeping for that distinct policy.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// CommandHelp invokes a Cobra command's help text, logging a warning on
// failure.
func CommandHelp(c *cobra.Command, logger *logging.Logger) {
	if err := c.Help(); err != nil {
		logger.Warnf("unable to print help: %s", err.Error())
	}
}

// Succeed logs a warning naming task if err is non-nil. It is used for
// best-effort operations where the caller has no meaningful recovery beyond
// reporting the failure.
func Succeed(err error, task string, logger *logging.Logger) {
	if err != nil {
		logger.Warnf("unable to %s: %s", task, err.Error())
	}
}
