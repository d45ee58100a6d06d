// Package locking implements advisory, cross-process mutual exclusion over
// a lock file, plus the acquisition strategies (blocking, non-blocking, and
// bounded-timeout-with-backoff) built on top of it.
//
// A Locker wraps a single open file descriptor and the platform-specific
// advisory locking primitive (fcntl record locks on POSIX, LockFileEx on
// Windows).
// It never deletes its lock file: the file persists across Unlock/Close so
// that a concurrent acquirer never races a delete against a reacquire.
// Reclaiming abandoned lock files is pkg/housekeeping's job, not this
// package's.
package locking

import "os"

// Locker holds an open lock file and tracks whether this process currently
// holds the advisory lock on it.
type Locker struct {
	file *os.File
	held bool
}

// NewLocker opens (creating if necessary) the lock file at path without
// acquiring the lock. If followSymlink is false and path resolves to a
// symbolic link, it returns a *SymlinkRejectedError instead of following it.
func NewLocker(path string, permissions os.FileMode, followSymlink bool) (*Locker, error) {
	file, err := openLockFile(path, permissions, followSymlink)
	if err != nil {
		if _, ok := err.(*SymlinkRejectedError); ok {
			return nil, err
		}
		return nil, &CreationFailedError{Path: path, Cause: err}
	}
	return &Locker{file: file}, nil
}

// Lock attempts to acquire the advisory lock. If block is true it waits
// until the lock is available; otherwise it returns a *BusyError
// immediately if the lock is already held elsewhere.
func (l *Locker) Lock(block bool) error {
	if err := l.lock(block); err != nil {
		if isWouldBlock(err) {
			return &BusyError{Path: l.file.Name()}
		}
		return err
	}
	l.held = true
	return nil
}

// Unlock releases the advisory lock without closing or removing the
// underlying file.
func (l *Locker) Unlock() error {
	if err := l.unlock(); err != nil {
		return err
	}
	l.held = false
	return nil
}

// Held reports whether this Locker currently holds the advisory lock.
func (l *Locker) Held() bool {
	return l.held
}

// Close releases the underlying file descriptor. It does not release the
// advisory lock explicitly: on POSIX the kernel drops the process's fcntl
// locks on the file as soon as any descriptor referring to it is closed,
// and on Windows the system releases the handle's locks when the handle is
// closed. Callers that acquired the lock should still call Unlock first for
// clarity and portability.
func (l *Locker) Close() error {
	return l.file.Close()
}

// Path returns the path of the underlying lock file.
func (l *Locker) Path() string {
	return l.file.Name()
}
