package housekeeping

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mutxcli/mutx/pkg/filesystem/locking"
)

// TestLocksCleansOrphanAndSparesHeld covers one unheld lock file and one
// held lock file; a dry-run reports the orphan without touching it, and a
// real run removes only the orphan.
func TestLocksCleansOrphanAndSparesHeld(t *testing.T) {
	dir := t.TempDir()
	orphan := filepath.Join(dir, "a.lock")
	held := filepath.Join(dir, "b.lock")
	if err := os.WriteFile(orphan, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(held, nil, 0600); err != nil {
		t.Fatal(err)
	}

	holder, err := locking.NewLocker(held, 0600, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := holder.Lock(true); err != nil {
		t.Fatal(err)
	}
	defer holder.Close()

	dryReport, err := Locks(dir, Options{DryRun: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	deleted, wouldDelete, _ := dryReport.Counts()
	if deleted != 0 || wouldDelete != 1 {
		t.Fatalf("dry run counts = (deleted=%d, wouldDelete=%d), want (0, 1)", deleted, wouldDelete)
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Error("dry run removed a file it should only have reported")
	}

	report, err := Locks(dir, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	deleted, wouldDelete, _ = report.Counts()
	if deleted != 1 || wouldDelete != 0 {
		t.Fatalf("run counts = (deleted=%d, wouldDelete=%d), want (1, 0)", deleted, wouldDelete)
	}

	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("orphaned lock file was not removed")
	}
	if _, err := os.Stat(held); err != nil {
		t.Error("held lock file was incorrectly removed")
	}
}

// TestLocksSkipsSymlinks verifies that a symlink named like a lock file is
// never classified or deleted, and its target is untouched.
func TestLocksSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on windows")
	}

	dir := t.TempDir()
	external := filepath.Join(t.TempDir(), "external.lock")
	if err := os.WriteFile(external, nil, 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.lock")
	if err := os.Symlink(external, link); err != nil {
		t.Fatal(err)
	}

	report, err := Locks(dir, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 0 {
		t.Errorf("expected no entries for a directory containing only a symlink, got %d", len(report.Entries))
	}
	if _, err := os.Stat(external); err != nil {
		t.Error("symlink target was removed")
	}
}

// TestBackupsKeepNewest covers two backups of the same base name;
// keep-newest 1 deletes the older one.
func TestBackupsKeepNewest(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "v.txt.20260101_000000.mutx.backup")
	newer := filepath.Join(dir, "v.txt.20260601_000000.mutx.backup")
	if err := os.WriteFile(older, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newer, []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}
	pastTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	if err := os.Chtimes(older, pastTime, pastTime); err != nil {
		t.Fatal(err)
	}

	report, err := Backups(dir, ".mutx.backup", Options{KeepNewest: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	deleted, _, _ := report.Counts()
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if _, err := os.Stat(older); !os.IsNotExist(err) {
		t.Error("older backup was not removed")
	}
	if _, err := os.Stat(newer); err != nil {
		t.Error("newer backup was incorrectly removed")
	}
}

// TestBackupsRejectsInvalidSuffix verifies the suffix invariant is enforced
// before any traversal begins.
func TestBackupsRejectsInvalidSuffix(t *testing.T) {
	dir := t.TempDir()
	if _, err := Backups(dir, "", Options{}, nil); err == nil {
		t.Error("expected error for empty suffix")
	}
	if _, err := Backups(dir, ".", Options{}, nil); err == nil {
		t.Error("expected error for \".\" suffix")
	}
}

// TestBackupsIgnoresNonMatchingFiles verifies files that merely resemble a
// backup name are left untouched.
func TestBackupsIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	names := []string{"f.backup", "f.bak", "f.20260125.backup"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}

	report, err := Backups(dir, ".mutx.backup", Options{OlderThan: time.Nanosecond}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 0 {
		t.Errorf("expected no entries among non-matching names, got %d", len(report.Entries))
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("non-matching file %s was removed", name)
		}
	}
}

// TestAllRequiresBothDirectories verifies the validation error for a
// mixed/omitted directory pair.
func TestAllRequiresBothDirectories(t *testing.T) {
	if _, _, err := All("", "/tmp", ".mutx.backup", Options{}, nil); err == nil {
		t.Error("expected error when locksDir is empty")
	}
	if _, _, err := All("/tmp", "", ".mutx.backup", Options{}, nil); err == nil {
		t.Error("expected error when backupsDir is empty")
	}
}
