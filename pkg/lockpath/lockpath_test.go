package lockpath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDeriveDeterministic verifies that deriving a lock path for the same
// logical target twice yields an identical result.
func TestDeriveDeterministic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "file.txt")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatal(err)
	}

	first, err := Derive(target)
	if err != nil {
		t.Fatalf("first derive failed: %v", err)
	}
	second, err := Derive(target)
	if err != nil {
		t.Fatalf("second derive failed: %v", err)
	}
	if first != second {
		t.Errorf("derived lock paths differ across calls: %q != %q", first, second)
	}
}

// TestDeriveDistinctTargets verifies that distinct targets yield distinct
// lock paths.
func TestDeriveDistinctTargets(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	lockA, err := Derive(a)
	if err != nil {
		t.Fatal(err)
	}
	lockB, err := Derive(b)
	if err != nil {
		t.Fatal(err)
	}
	if lockA == lockB {
		t.Errorf("distinct targets produced identical lock paths: %q", lockA)
	}
}

// TestDeriveNeverEqualsOutput verifies the lock path never equals the
// canonicalized output path.
func TestDeriveNeverEqualsOutput(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")

	lockPath, err := Derive(target)
	if err != nil {
		t.Fatal(err)
	}
	if lockPath == target {
		t.Errorf("derived lock path equals output path: %q", lockPath)
	}
}

// TestDeriveFilenameGrammar spot-checks the filename grammar's components.
func TestDeriveFilenameGrammar(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "project", "config", "settings.yaml")
	if err := os.MkdirAll(filepath.Dir(nested), 0755); err != nil {
		t.Fatal(err)
	}

	lockPath, err := Derive(nested)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(lockPath)
	if !strings.HasSuffix(base, ".lock") {
		t.Errorf("lock filename missing .lock suffix: %q", base)
	}
	if !strings.Contains(base, "settings.yaml") {
		t.Errorf("lock filename missing base name: %q", base)
	}
	if !strings.Contains(base, "config") {
		t.Errorf("lock filename missing parent name: %q", base)
	}
}

// TestInitialismShortPath verifies the initialism is empty for paths with
// two or fewer components.
func TestInitialismShortPath(t *testing.T) {
	if got := initialism([]string{"a.txt"}); got != "" {
		t.Errorf("initialism of single-component path = %q, want empty", got)
	}
	if got := initialism([]string{"parent", "a.txt"}); got != "" {
		t.Errorf("initialism of two-component path = %q, want empty", got)
	}
}

// TestInitialismMultiComponent verifies the initialism concatenates the
// first alphanumeric, lower-cased character of each ancestor.
func TestInitialismMultiComponent(t *testing.T) {
	got := initialism([]string{"Users", "Alice", "Projects", "parent", "file.txt"})
	want := "u.a.p"
	if got != want {
		t.Errorf("initialism = %q, want %q", got, want)
	}
}

// TestValidateOverrideCollision verifies that an override identical to the
// output path is rejected.
func TestValidateOverrideCollision(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")

	if err := ValidateOverride(target, target); err == nil {
		t.Fatal("expected collision error for identical override")
	}
}

// TestValidateOverrideDistinct verifies a distinct override path is accepted.
func TestValidateOverrideDistinct(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "file.txt")
	override := filepath.Join(dir, "file.txt.lock")

	if err := ValidateOverride(target, override); err != nil {
		t.Errorf("unexpected error for distinct override: %v", err)
	}
}

// TestLocksDirectoryHonorsXDGCacheHome verifies that on non-macOS,
// non-Windows platforms the XDG_CACHE_HOME override is respected.
func TestLocksDirectoryHonorsXDGCacheHome(t *testing.T) {
	if os.Getenv("GOOS") == "windows" {
		t.Skip("not applicable on windows")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	locksDir, err := LocksDirectory()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(locksDir, dir) {
		t.Errorf("locks directory %q not rooted at XDG_CACHE_HOME %q", locksDir, dir)
	}
}
