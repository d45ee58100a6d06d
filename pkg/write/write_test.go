package write

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mutxcli/mutx/pkg/backup"
	"github.com/mutxcli/mutx/pkg/filesystem"
	"github.com/mutxcli/mutx/pkg/filesystem/locking"
)

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	target := filepath.Join(dir, "out.txt")

	req := Request{
		OutputPath: target,
		Input:      bytes.NewReader([]byte("hello")),
		Mode:       filesystem.Buffered,
		Lock:       locking.NoWaitStrategy(),
	}

	result, err := Write(context.Background(), req, nil)
	if err != nil {
		t.Fatal("unexpected write error:", err)
	}
	if result.OutputPath != target {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("contents = %q, want %q", data, "hello")
	}
}

func TestWriteWithBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	target := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	req := Request{
		OutputPath: target,
		Input:      bytes.NewReader([]byte("new")),
		Mode:       filesystem.Buffered,
		Lock:       locking.NoWaitStrategy(),
		Backup:     &backup.Spec{Suffix: backup.DefaultSuffix},
	}

	result, err := Write(context.Background(), req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Backup == nil {
		t.Fatal("expected a backup artifact")
	}

	backupData, err := os.ReadFile(result.Backup.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(backupData) != "old" {
		t.Errorf("backup contents = %q, want %q", backupData, "old")
	}

	newData, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(newData) != "new" {
		t.Errorf("target contents = %q, want %q", newData, "new")
	}
}

func TestWriteRejectsInvalidSymlinkPolicy(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	req := Request{
		OutputPath: target,
		Input:      bytes.NewReader(nil),
		Mode:       filesystem.Buffered,
		Lock:       locking.NoWaitStrategy(),
		Symlinks:   SymlinkPolicy{FollowLock: true, FollowOutput: false},
	}

	_, err := Write(context.Background(), req, nil)
	if err == nil {
		t.Fatal("expected error for follow_lock without follow_output")
	}
	if _, ok := err.(*InvalidSymlinkPolicyError); !ok {
		t.Errorf("expected *InvalidSymlinkPolicyError, got %T: %v", err, err)
	}
}

func TestWriteContendedLockFailsFast(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	target := filepath.Join(dir, "out.txt")

	lockPath, err := lockPathFor(target)
	if err != nil {
		t.Fatal(err)
	}
	holder, err := locking.NewLocker(lockPath, 0600, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := holder.Lock(true); err != nil {
		t.Fatal(err)
	}
	defer holder.Close()

	req := Request{
		OutputPath: target,
		Input:      bytes.NewReader([]byte("x")),
		Mode:       filesystem.Buffered,
		Lock:       locking.NoWaitStrategy(),
	}
	_, err = Write(context.Background(), req, nil)
	if err == nil {
		t.Fatal("expected lock contention error")
	}
	if _, ok := err.(*locking.BusyError); !ok {
		t.Errorf("expected *locking.BusyError, got %T: %v", err, err)
	}

	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("target should remain untouched after a failed lock acquisition")
	}
}

func lockPathFor(outputPath string) (string, error) {
	return resolveLockPath(Request{OutputPath: outputPath})
}
