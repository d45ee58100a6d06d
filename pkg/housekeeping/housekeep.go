// Package housekeeping scans a directory for orphaned lock files or
// superseded backup artifacts and removes (or, in dry-run mode, reports)
// those that satisfy the relevant predicate. Directories are always
// caller-supplied rather than fixed, and a pass runs once per invocation:
// mutx has no long-lived daemon to run a background sweep from.
package housekeeping

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/filesystem/locking"
	"github.com/mutxcli/mutx/pkg/logging"
)

// Options configures a single housekeeping pass.
type Options struct {
	// Recursive descends into subdirectories rather than scanning only the
	// top level.
	Recursive bool

	// OlderThan, if non-zero, applies an age test against now minus this
	// duration. Locks only considers lock files modified before that point;
	// Backups deletes any backup modified at or before it, in addition to
	// whatever KeepNewest marks (inclusive OR).
	OlderThan time.Duration

	// DryRun reports what would be deleted without deleting anything.
	DryRun bool

	// KeepNewest, if non-zero, is used by Backups to retain the N
	// most-recently-modified backups per extracted base name.
	KeepNewest int
}

// Action classifies what happened (or would happen) to a candidate.
type Action int

const (
	Skipped Action = iota
	Deleted
	WouldDelete
)

func (a Action) String() string {
	switch a {
	case Deleted:
		return "deleted"
	case WouldDelete:
		return "would-delete"
	default:
		return "skipped"
	}
}

// Entry records the disposition of a single scanned path.
type Entry struct {
	Path    string
	Action  Action
	Size    int64
	ModTime time.Time
}

// Report is the ordered outcome of a housekeeping pass.
type Report struct {
	Entries []Entry
	DryRun  bool
}

func (r *Report) add(path string, action Action, size int64, modTime time.Time) {
	r.Entries = append(r.Entries, Entry{Path: path, Action: action, Size: size, ModTime: modTime})
}

// Counts returns the number of entries in each disposition.
func (r *Report) Counts() (deleted, wouldDelete, skipped int) {
	for _, e := range r.Entries {
		switch e.Action {
		case Deleted:
			deleted++
		case WouldDelete:
			wouldDelete++
		default:
			skipped++
		}
	}
	return
}

// BytesAffected sums the size of every deleted or would-delete entry.
func (r *Report) BytesAffected() int64 {
	var total int64
	for _, e := range r.Entries {
		if e.Action == Deleted || e.Action == WouldDelete {
			total += e.Size
		}
	}
	return total
}

// walk visits every non-directory, non-symlink entry under root, descending
// into subdirectories only if recursive is true. Symlinks are never
// followed and never visited: this is the traversal's sole defense against
// both directory-escape and deleting a symlink's target by mistake.
func walk(root string, recursive bool, logger *logging.Logger, visit func(path string, entry os.DirEntry)) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return &TraversalReadFailedError{Dir: root, Cause: err}
	}
	walkEntries(root, entries, recursive, logger, visit)
	return nil
}

func walkEntries(root string, entries []os.DirEntry, recursive bool, logger *logging.Logger, visit func(path string, entry os.DirEntry)) {
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		info, err := entry.Info()
		if err != nil {
			logger.Warnf("unable to stat %s: %v", path, err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if info.IsDir() {
			if !recursive {
				continue
			}
			sub, err := os.ReadDir(path)
			if err != nil {
				logger.Warnf("unable to read directory %s: %v", path, err)
				continue
			}
			walkEntries(path, sub, recursive, logger, visit)
			continue
		}

		visit(path, entry)
	}
}

// isOrphanedLock reports whether path is a lock file that nothing currently
// holds, per the race-tolerant definition: a non-blocking exclusive-lock
// attempt succeeds.
func isOrphanedLock(path string) (bool, error) {
	locker, err := locking.NewLocker(path, 0600, false)
	if err != nil {
		return false, err
	}
	defer locker.Close()

	if err := locker.Lock(false); err != nil {
		if _, busy := err.(*locking.BusyError); busy {
			return false, nil
		}
		return false, err
	}
	locker.Unlock()
	return true, nil
}

// Locks scans dir for orphaned lock files (names ending in ".lock" that a
// non-blocking lock attempt successfully acquires) and deletes or reports
// them per opts.
func Locks(dir string, opts Options, logger *logging.Logger) (*Report, error) {
	report := &Report{DryRun: opts.DryRun}
	now := time.Now()

	err := walk(dir, opts.Recursive, logger, func(path string, entry os.DirEntry) {
		if filepath.Ext(entry.Name()) != ".lock" {
			return
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warnf("unable to stat %s: %v", path, err)
			return
		}
		if opts.OlderThan > 0 && now.Sub(info.ModTime()) < opts.OlderThan {
			report.add(path, Skipped, info.Size(), info.ModTime())
			return
		}

		orphaned, err := isOrphanedLock(path)
		if err != nil {
			logger.Warnf("unable to test lock %s for orphan status: %v", path, err)
			report.add(path, Skipped, info.Size(), info.ModTime())
			return
		}
		if !orphaned {
			report.add(path, Skipped, info.Size(), info.ModTime())
			return
		}

		if opts.DryRun {
			report.add(path, WouldDelete, info.Size(), info.ModTime())
			return
		}
		removeAndRecord(report, path, info, logger)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Backups scans dir for backup artifacts matching suffix, applying the
// keep-newest and/or older-than retention policies (inclusive OR), and
// deletes or reports qualifying candidates per opts.
func Backups(dir, suffix string, opts Options, logger *logging.Logger) (*Report, error) {
	if suffix == "" || suffix == "." {
		return nil, &InvalidBackupSuffixError{Suffix: suffix}
	}

	type candidate struct {
		path    string
		base    string
		info    os.FileInfo
	}
	var candidates []candidate

	err := walk(dir, opts.Recursive, logger, func(path string, entry os.DirEntry) {
		base, _, ok := backup.Recognize(entry.Name(), suffix)
		if !ok {
			return
		}
		info, err := entry.Info()
		if err != nil {
			logger.Warnf("unable to stat %s: %v", path, err)
			return
		}
		candidates = append(candidates, candidate{path: path, base: base, info: info})
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	toDelete := make(map[int]bool, len(candidates))

	if opts.KeepNewest > 0 {
		groups := make(map[string][]int)
		for i, c := range candidates {
			groups[c.base] = append(groups[c.base], i)
		}
		for _, indices := range groups {
			sort.Slice(indices, func(a, b int) bool {
				return candidates[indices[a]].info.ModTime().After(candidates[indices[b]].info.ModTime())
			})
			for rank, idx := range indices {
				if rank >= opts.KeepNewest {
					toDelete[idx] = true
				}
			}
		}
	}

	if opts.OlderThan > 0 {
		for i, c := range candidates {
			if now.Sub(c.info.ModTime()) >= opts.OlderThan {
				toDelete[i] = true
			}
		}
	}

	report := &Report{DryRun: opts.DryRun}
	for i, c := range candidates {
		if !toDelete[i] {
			report.add(c.path, Skipped, c.info.Size(), c.info.ModTime())
			continue
		}
		if opts.DryRun {
			report.add(c.path, WouldDelete, c.info.Size(), c.info.ModTime())
			continue
		}
		removeAndRecord(report, c.path, c.info, logger)
	}
	return report, nil
}

// All runs Locks against locksDir and Backups against backupsDir, requiring
// both to be supplied explicitly: there is no implicit "use one directory
// for everything" fallback once both categories are in play.
func All(locksDir, backupsDir, suffix string, opts Options, logger *logging.Logger) (locksReport, backupsReport *Report, err error) {
	if locksDir == "" || backupsDir == "" {
		return nil, nil, &AmbiguousAllDirectoriesError{}
	}
	locksReport, err = Locks(locksDir, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	backupsReport, err = Backups(backupsDir, suffix, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	return locksReport, backupsReport, nil
}

// removeAndRecord deletes path, tolerating a concurrent deletion
// (NotFound) as success: another process winning the race is the expected
// housekeeping outcome, not a failure.
func removeAndRecord(report *Report, path string, info os.FileInfo, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %s: %v", path, err)
		report.add(path, Skipped, info.Size(), info.ModTime())
		return
	}
	report.add(path, Deleted, info.Size(), info.ModTime())
}
