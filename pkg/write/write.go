// Package write orchestrates a single atomic write: derive or validate the
// lock path, acquire the lock, optionally snapshot the existing target,
// then commit the new contents — releasing the lock on every exit path.
//
// This is the composition root for components A (pkg/lockpath), B
// (pkg/filesystem/locking), C (pkg/filesystem), and D (pkg/backup); it
// holds no algorithm of its own beyond sequencing and symlink-policy
// validation.
package write

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/filesystem"
	"github.com/mutxcli/mutx/pkg/filesystem/locking"
	"github.com/mutxcli/mutx/pkg/lockpath"
	"github.com/mutxcli/mutx/pkg/logging"
	"github.com/mutxcli/mutx/pkg/must"
)

// lockFilePermissions is the mode used when creating a lock file: a
// zero-byte regular file whose advisory lock lives on the open descriptor,
// not in its contents, so permissive-but-private is sufficient.
const lockFilePermissions = 0600

// SymlinkPolicy governs symlink-following for a write: following a
// symlinked lock path without also following a symlinked output path is
// nonsensical (the weaker opt-in is implied by the stronger one), so
// FollowLock true with FollowOutput false is rejected at Write time.
type SymlinkPolicy struct {
	FollowOutput bool
	FollowLock   bool
}

// Request describes everything a single Write call needs.
type Request struct {
	OutputPath       string
	Input            io.Reader
	Mode             filesystem.IngestMode
	Lock             locking.Strategy
	Backup           *backup.Spec
	Symlinks         SymlinkPolicy
	LockPathOverride string
}

// Result reports what a successful Write actually did.
type Result struct {
	OutputPath string
	LockPath   string
	Backup     *backup.Artifact
}

// Write performs the full validate → derive lock path → acquire lock →
// optional backup → atomic commit → release sequence. The lock is held
// across the backup and commit steps and released on every return path,
// including a failure partway through.
func Write(ctx context.Context, req Request, logger *logging.Logger) (*Result, error) {
	if req.Symlinks.FollowLock && !req.Symlinks.FollowOutput {
		return nil, &InvalidSymlinkPolicyError{}
	}
	if req.Backup != nil {
		if err := req.Backup.Validate(); err != nil {
			return nil, err
		}
	}

	lockPath, err := resolveLockPath(req)
	if err != nil {
		return nil, err
	}

	locker, err := locking.Acquire(ctx, lockPath, lockFilePermissions, req.Symlinks.FollowLock, req.Lock)
	if err != nil {
		return nil, err
	}
	defer must.Close(locker, logger)
	defer must.Unlock(locker, logger)

	var artifact *backup.Artifact
	if req.Backup != nil {
		artifact, err = backup.Snapshot(req.OutputPath, *req.Backup, time.Now(), logger)
		if err != nil {
			return nil, err
		}
	}

	if err := filesystem.WriteAtomic(req.OutputPath, req.Input, req.Mode, req.Symlinks.FollowOutput, logger); err != nil {
		var dirFsyncErr *filesystem.DirFsyncFailedError
		if !errors.As(err, &dirFsyncErr) {
			return nil, err
		}
		// The rename already committed, so the replacement succeeded; only
		// its durability across a crash is in question. Surface that as a
		// warning rather than failing an otherwise-successful write.
		logger.Warnf("%v", dirFsyncErr)
	}

	return &Result{OutputPath: req.OutputPath, LockPath: lockPath, Backup: artifact}, nil
}

// resolveLockPath derives the lock path from the output path, or validates
// and returns the caller's override verbatim.
func resolveLockPath(req Request) (string, error) {
	if req.LockPathOverride != "" {
		if err := lockpath.ValidateOverride(req.OutputPath, req.LockPathOverride); err != nil {
			return "", err
		}
		return req.LockPathOverride, nil
	}
	return lockpath.Derive(req.OutputPath)
}
