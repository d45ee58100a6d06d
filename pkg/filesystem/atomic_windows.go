package filesystem

// syncDirectory is a no-op on Windows: NTFS does not expose a directory
// handle fsync equivalent to POSIX's, and MoveFileEx-based renames are
// already logged through NTFS's transaction log.
func syncDirectory(dir string) error {
	return nil
}
