//go:build !windows && !plan9

// TODO: Figure out what to do for Plan 9. It doesn't support FcntlFlock at all,
// but we might be able to ~emulate it with os.O_EXCL, but that wouldn't allow
// us to automatically release locks if a process dies.

package locking

import (
	"errors"
	"os"
	"syscall"
)

// openLockFile opens (creating if necessary) the lock file at path. When
// followSymlink is false it passes O_NOFOLLOW so the kernel itself refuses a
// symlinked path, rather than relying on a stat-then-open check that a
// concurrent rename could defeat.
func openLockFile(path string, permissions os.FileMode, followSymlink bool) (*os.File, error) {
	flags := os.O_RDWR | os.O_CREATE
	if !followSymlink {
		flags |= syscall.O_NOFOLLOW
	}
	file, err := os.OpenFile(path, flags, permissions)
	if err != nil {
		if errors.Is(err, syscall.ELOOP) {
			return nil, &SymlinkRejectedError{Path: path}
		}
		return nil, err
	}
	return file, nil
}

// lock attempts to acquire the advisory file lock.
func (l *Locker) lock(block bool) error {
	lockSpec := syscall.Flock_t{
		Type:   syscall.F_WRLCK,
		Whence: int16(os.SEEK_SET),
		Start:  0,
		Len:    0,
	}
	operation := syscall.F_SETLK
	if block {
		operation = syscall.F_SETLKW
	}
	return syscall.FcntlFlock(l.file.Fd(), operation, &lockSpec)
}

// unlock releases the advisory file lock.
func (l *Locker) unlock() error {
	unlockSpec := syscall.Flock_t{
		Type:   syscall.F_UNLCK,
		Whence: int16(os.SEEK_SET),
		Start:  0,
		Len:    0,
	}
	return syscall.FcntlFlock(l.file.Fd(), syscall.F_SETLK, &unlockSpec)
}

// isWouldBlock reports whether err indicates that a non-blocking lock
// attempt found the lock already held.
func isWouldBlock(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EACCES)
}
