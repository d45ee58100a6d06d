package cmd

import "github.com/mutxcli/mutx/pkg/filesystem/locking"

// exitCodeForError maps a returned error to the process exit code the
// invocation boundary uses for it: lock contention gets its own code so
// callers can distinguish it from a general failure, and cancellation
// (delivered via a terminated-by-signal context) gets its own as well.
func exitCodeForError(err error) int {
	switch err.(type) {
	case *locking.BusyError, *locking.TimeoutError:
		return 2
	case *locking.CanceledError:
		return 3
	default:
		return 1
	}
}
