package housekeeping

import "fmt"

// TraversalReadFailedError indicates that a top-level housekeeping
// directory could not be listed.
type TraversalReadFailedError struct {
	Dir   string
	Cause error
}

func (e *TraversalReadFailedError) Error() string {
	return fmt.Sprintf("unable to read directory %s: %v", e.Dir, e.Cause)
}

func (e *TraversalReadFailedError) Unwrap() error { return e.Cause }

// InvalidBackupSuffixError indicates that a suffix passed to Backups failed
// the non-empty/not-"." invariant.
type InvalidBackupSuffixError struct {
	Suffix string
}

func (e *InvalidBackupSuffixError) Error() string {
	return fmt.Sprintf("invalid backup suffix %q: must be non-empty and not \".\"", e.Suffix)
}

// AmbiguousAllDirectoriesError indicates that an "all" housekeeping pass
// was requested without both a locks directory and a backups directory.
type AmbiguousAllDirectoriesError struct{}

func (e *AmbiguousAllDirectoriesError) Error() string {
	return "housekeeping all requires both a locks directory and a backups directory"
}
