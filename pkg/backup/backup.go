// Package backup implements mutx's pre-write snapshot engine: before an
// atomic write commits, it copies the existing target aside under a
// strictly-formatted name so the original contents can be recovered.
//
// The copy-then-rename staging shape mirrors pkg/filesystem's atomic write
// pattern (temp file in the destination directory, fsync, rename), applied
// here to a copy source instead of a caller-supplied byte slice.
package backup

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mutxcli/mutx/pkg/logging"
	"github.com/mutxcli/mutx/pkg/must"
)

// DefaultSuffix is the backup artifact suffix used when the caller does not
// specify one.
const DefaultSuffix = ".mutx.backup"

// timestampLayout is the fixed-width local-time layout used for the
// optional timestamp segment: 8 digits, underscore, 6 digits.
const timestampLayout = "20060102_150405"

const timestampSegmentLength = len(timestampLayout)

// Spec configures a single backup operation.
type Spec struct {
	// Suffix is appended to the backup's basename, including any leading
	// dot. It must be non-empty and not equal to ".".
	Suffix string

	// IncludeTimestamp, when true, inserts a ".YYYYMMDD_HHMMSS" segment
	// (local time) between the original basename and Suffix.
	IncludeTimestamp bool

	// DirectoryOverride places the backup artifact in a directory other
	// than the target's parent. Empty means "next to the target".
	DirectoryOverride string
}

// Validate checks the suffix invariant the engine enforces regardless of
// what validation the CLI boundary already performed.
func (s Spec) Validate() error {
	if s.Suffix == "" || s.Suffix == "." {
		return &InvalidSuffixError{Suffix: s.Suffix}
	}
	return nil
}

// Artifact describes a backup file produced by Snapshot.
type Artifact struct {
	Path     string
	BaseName string
}

// Snapshot copies the current contents of outputPath into a new backup
// artifact per spec, then atomically renames it into place. If outputPath
// does not exist, Snapshot is a no-op and returns (nil, nil).
func Snapshot(outputPath string, spec Spec, now time.Time, logger *logging.Logger) (*Artifact, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	source, err := os.Open(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &CopyFailedError{Path: outputPath, Cause: err}
	}
	defer must.Close(source, logger)

	directory := spec.DirectoryOverride
	if directory == "" {
		directory = filepath.Dir(outputPath)
	}

	baseName := filepath.Base(outputPath)
	name := baseName
	if spec.IncludeTimestamp {
		name += "." + now.Local().Format(timestampLayout)
	}
	name += spec.Suffix

	finalPath := filepath.Join(directory, name)
	stagingPath := filepath.Join(directory, ".mutx-temporary-backup-"+uuid.NewString())

	staging, err := os.OpenFile(stagingPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, &CopyFailedError{Path: finalPath, Cause: err}
	}

	if _, err := io.Copy(staging, source); err != nil {
		must.Close(staging, logger)
		must.OSRemove(stagingPath, logger)
		return nil, &CopyFailedError{Path: finalPath, Cause: err}
	}
	if err := staging.Sync(); err != nil {
		must.Close(staging, logger)
		must.OSRemove(stagingPath, logger)
		return nil, &CopyFailedError{Path: finalPath, Cause: err}
	}
	if err := staging.Close(); err != nil {
		must.OSRemove(stagingPath, logger)
		return nil, &CopyFailedError{Path: finalPath, Cause: err}
	}

	if err := os.Rename(stagingPath, finalPath); err != nil {
		must.OSRemove(stagingPath, logger)
		return nil, &RenameFailedError{Path: finalPath, Cause: err}
	}

	return &Artifact{Path: finalPath, BaseName: name}, nil
}

// Recognize reports whether name qualifies as a backup artifact under
// suffix, per the filename grammar
// {base_name}[.{YYYYMMDD_HHMMSS}].{suffix}. It returns the extracted base
// name and, if present, the parsed timestamp.
//
// A trailing segment shaped like ".{15 characters}" immediately before
// suffix must parse as a valid timestamp or the whole name is disqualified:
// this is the primary defense against deleting a file whose name merely
// contains something that looks like, but isn't, a timestamp.
func Recognize(name, suffix string) (baseName string, timestamp *time.Time, ok bool) {
	if suffix == "" || !strings.HasSuffix(name, suffix) {
		return "", nil, false
	}
	remainder := strings.TrimSuffix(name, suffix)
	if remainder == "" {
		return "", nil, false
	}

	dotIndex := len(remainder) - timestampSegmentLength - 1
	if dotIndex >= 0 && remainder[dotIndex] == '.' {
		candidate := remainder[dotIndex+1:]
		parsed, err := time.ParseInLocation(timestampLayout, candidate, time.Local)
		if err != nil {
			return "", nil, false
		}
		base := remainder[:dotIndex]
		if base == "" {
			return "", nil, false
		}
		return base, &parsed, true
	}

	return remainder, nil, true
}

// Name formats the basename a backup artifact would have for the given
// original basename, spec, and timestamp (used when IncludeTimestamp is
// true). It performs no I/O; it exists so callers can predict a name
// without running Snapshot.
func Name(originalBaseName string, spec Spec, now time.Time) string {
	name := originalBaseName
	if spec.IncludeTimestamp {
		name += "." + now.Local().Format(timestampLayout)
	}
	return name + spec.Suffix
}
