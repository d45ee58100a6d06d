// Package filesystem provides mutx's atomic replacement primitive: ingest
// bytes into a sibling temporary file, fsync the data, rename over the
// target, then fsync the parent directory so the rename itself survives a
// crash.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mutxcli/mutx/pkg/logging"
	"github.com/mutxcli/mutx/pkg/must"
)

// IngestMode selects how WriteAtomic routes bytes from the input source
// into the temporary file.
type IngestMode int

const (
	// Buffered reads the entire source into memory before writing it out in
	// a single pass. Appropriate when the caller expects small input.
	Buffered IngestMode = iota
	// Streaming copies the source in bounded chunks, keeping memory use
	// independent of input size.
	Streaming
)

const (
	atomicWriteTemporaryNamePrefix = TemporaryNamePrefix + "write-"

	// streamingChunkSize is the bounded buffer size used by Streaming mode.
	streamingChunkSize = 64 * 1024
)

// WriteAtomic replaces the file at path with the contents read from
// source, per mode, such that a concurrent reader of path observes either
// the previous contents in full or the new contents in full.
//
// If path exists and is (without following) a symbolic link, WriteAtomic
// fails with *OutputSymlinkRejectedError unless followOutput is true; with
// followOutput true, the link's final target is replaced and the link itself
// is left in place. On success the replacement file inherits the
// pre-existing file's permission bits; if no prior file existed, the process
// umask governs.
func WriteAtomic(path string, source io.Reader, mode IngestMode, followOutput bool, logger *logging.Logger) error {
	if followOutput {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}

	inheritedPermissions, existed, err := inspectOutput(path, followOutput)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	temporary, err := createTemporarySibling(dir)
	if err != nil {
		return &TempCreateFailedError{Path: path, Cause: err}
	}

	if err := ingest(temporary, source, mode); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return reattachPath(err, path)
	}

	if err := temporary.Sync(); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return &FsyncFailedError{Path: path, Cause: err}
	}

	if existed {
		if err := os.Chmod(temporary.Name(), inheritedPermissions); err != nil {
			must.Close(temporary, logger)
			must.OSRemove(temporary.Name(), logger)
			return &WriteFailedError{Path: path, Cause: err}
		}
	}

	if err := temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return &WriteFailedError{Path: path, Cause: err}
	}

	if err := os.Rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return &RenameFailedError{Path: path, Cause: err}
	}

	if err := syncDirectory(dir); err != nil {
		// The rename already committed, so the write is considered
		// successful; the caller decides whether a durability warning
		// should change its exit behavior.
		return &DirFsyncFailedError{Path: path, Cause: err}
	}

	return nil
}

// inspectOutput checks path's symlink status (without following) and, if a
// prior file exists, returns its permission bits for inheritance.
func inspectOutput(path string, followOutput bool) (os.FileMode, bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("unable to stat output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 && !followOutput {
		return 0, false, &OutputSymlinkRejectedError{Path: path}
	}
	return info.Mode().Perm(), true, nil
}

// createTemporarySibling creates a new, exclusively-owned temporary file in
// dir with a collision-resistant name. The file is created with permissive
// mode bits so that, absent a later inherited permission set, the process
// umask governs the final permissions exactly as it would for any new file.
func createTemporarySibling(dir string) (*os.File, error) {
	name := filepath.Join(dir, atomicWriteTemporaryNamePrefix+uuid.NewString())
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
}

// ingest routes bytes from source into temporary according to mode,
// distinguishing read failures (*InputReadFailedError) from write failures
// (*WriteFailedError).
func ingest(temporary *os.File, source io.Reader, mode IngestMode) error {
	switch mode {
	case Buffered:
		data, err := io.ReadAll(source)
		if err != nil {
			return &InputReadFailedError{Cause: err}
		}
		if _, err := temporary.Write(data); err != nil {
			return &WriteFailedError{Cause: err}
		}
		return nil
	case Streaming:
		buffer := make([]byte, streamingChunkSize)
		for {
			n, readErr := source.Read(buffer)
			if n > 0 {
				if _, writeErr := temporary.Write(buffer[:n]); writeErr != nil {
					return &WriteFailedError{Cause: writeErr}
				}
			}
			if readErr == io.EOF {
				return nil
			}
			if readErr != nil {
				return &InputReadFailedError{Cause: readErr}
			}
		}
	default:
		return fmt.Errorf("unknown ingestion mode: %d", mode)
	}
}

// reattachPath fills in the Path field of an ingest-time error that was
// constructed without knowledge of the ultimate output path.
func reattachPath(err error, path string) error {
	switch e := err.(type) {
	case *InputReadFailedError:
		e.Path = path
		return e
	case *WriteFailedError:
		e.Path = path
		return e
	default:
		return &WriteFailedError{Path: path, Cause: err}
	}
}
