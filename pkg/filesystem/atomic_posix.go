//go:build !windows

package filesystem

import (
	"os"
)

// syncDirectory flushes dir's directory entry table to disk so that a
// preceding rename within it survives a crash.
func syncDirectory(dir string) error {
	handle, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer handle.Close()
	return handle.Sync()
}
