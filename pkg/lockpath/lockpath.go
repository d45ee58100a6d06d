// Package lockpath derives a collision-resistant lock file path from an
// output path, mapping distinct logical targets to distinct paths inside a
// process-wide cache directory. It is the path derivation component of
// mutx's lock subsystem: it never opens or touches the lock file itself,
// that is pkg/filesystem/locking's job.
package lockpath

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// ApplicationName is the name used to scope the cache directory
	// (<cache-root>/mutx/locks).
	ApplicationName = "mutx"

	// locksSubdirectory is the subdirectory of the application cache
	// directory in which derived lock files live.
	locksSubdirectory = "locks"

	// hashLength is the number of lowercase hex characters taken from the
	// SHA-256 digest of the canonical path.
	hashLength = 8
)

// CacheUnavailableError indicates that no platform cache directory could be
// identified.
type CacheUnavailableError struct {
	Cause error
}

func (e *CacheUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache directory unavailable: %v", e.Cause)
	}
	return "cache directory unavailable"
}

func (e *CacheUnavailableError) Unwrap() error { return e.Cause }

// LockPathCollidesWithOutputError indicates that the derived or overridden
// lock path is identical to the output path after canonicalization.
type LockPathCollidesWithOutputError struct {
	Path string
}

func (e *LockPathCollidesWithOutputError) Error() string {
	return fmt.Sprintf("lock path collides with output path: %s", e.Path)
}

// NonUTF8PathComponentError indicates that a path component is not valid
// UTF-8 and therefore cannot be decomposed into the lock filename grammar.
type NonUTF8PathComponentError struct {
	Component string
}

func (e *NonUTF8PathComponentError) Error() string {
	return fmt.Sprintf("path component is not valid UTF-8: %q", e.Component)
}

// canonicalize resolves path to an absolute form, following symlinks as far
// as the filesystem allows (an output path that does not yet exist is
// canonicalized up to its deepest existing ancestor).
func canonicalize(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to make path absolute: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absolute)
	if err == nil {
		return resolved, nil
	}

	// The path (or some component of it) doesn't exist yet. Walk upward
	// resolving symlinks on the deepest existing ancestor, then reattach the
	// non-existent suffix.
	dir := filepath.Dir(absolute)
	base := filepath.Base(absolute)
	var suffix []string
	for {
		if resolvedDir, dirErr := filepath.EvalSymlinks(dir); dirErr == nil {
			suffix = append(suffix, base)
			for i, j := 0, len(suffix)-1; i < j; i, j = i+1, j-1 {
				suffix[i], suffix[j] = suffix[j], suffix[i]
			}
			return filepath.Join(append([]string{resolvedDir}, suffix...)...), nil
		}
		suffix = append(suffix, base)
		next := filepath.Dir(dir)
		if next == dir {
			// Reached the root without finding an existing ancestor; fall
			// back to the cleaned absolute path.
			return absolute, nil
		}
		base = filepath.Base(dir)
		dir = next
	}
}

// splitComponents splits a canonical path into its path components, stripping
// any volume name and leading/trailing separators.
func splitComponents(path string) []string {
	clean := filepath.Clean(path)
	vol := filepath.VolumeName(clean)
	clean = strings.TrimPrefix(clean, vol)
	clean = strings.Trim(clean, string(filepath.Separator))
	if clean == "" {
		return nil
	}
	return strings.Split(clean, string(filepath.Separator))
}

// firstAlphanumericLower returns the lower-cased first alphanumeric rune in
// s, or the empty string if none exists.
func firstAlphanumericLower(s string) string {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToLower(string(r))
		}
	}
	return ""
}

// initialism computes the dot-separated initialism of the ancestor
// directories of a path, excluding the immediate parent and the base name.
func initialism(components []string) string {
	if len(components) <= 2 {
		return ""
	}
	ancestors := components[:len(components)-2]
	parts := make([]string, 0, len(ancestors))
	for _, ancestor := range ancestors {
		if letter := firstAlphanumericLower(ancestor); letter != "" {
			parts = append(parts, letter)
		}
	}
	return strings.Join(parts, ".")
}

// hash8 computes the first 8 lowercase hex characters of the SHA-256 digest
// of the canonical path's bytes.
func hash8(canonicalPath string) string {
	sum := sha256.Sum256([]byte(canonicalPath))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// cacheRoot resolves the platform standard per-user cache directory root
// (not yet scoped to the application).
func cacheRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", &CacheUnavailableError{Cause: fmt.Errorf("%%LOCALAPPDATA%% not set")}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "", &CacheUnavailableError{Cause: err}
		}
		return filepath.Join(home, "Library", "Caches"), nil
	default:
		if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "", &CacheUnavailableError{Cause: err}
		}
		return filepath.Join(home, ".cache"), nil
	}
}

// LocksDirectory computes (and lazily creates) the directory in which
// derived lock files live: <cache-root>/mutx/locks.
func LocksDirectory() (string, error) {
	root, err := cacheRoot()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, ApplicationName, locksSubdirectory)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("unable to create lock cache directory: %w", err)
	}
	return dir, nil
}

// Derive computes the lock path for outputPath per the filename grammar:
// {initialism}.{parent_name}.{base_name}.{hash8}.lock
func Derive(outputPath string) (string, error) {
	canonicalOutput, err := canonicalize(outputPath)
	if err != nil {
		return "", fmt.Errorf("unable to canonicalize output path: %w", err)
	}

	components := splitComponents(canonicalOutput)
	for _, component := range components {
		if !utf8.ValidString(component) {
			return "", &NonUTF8PathComponentError{Component: component}
		}
	}
	if len(components) == 0 {
		return "", fmt.Errorf("output path has no usable components: %s", outputPath)
	}

	baseName := components[len(components)-1]
	parentName := ""
	if len(components) >= 2 {
		parentName = components[len(components)-2]
	}

	name := fmt.Sprintf("%s.%s.%s.%s.lock", initialism(components), parentName, baseName, hash8(canonicalOutput))

	locksDir, err := LocksDirectory()
	if err != nil {
		return "", err
	}
	lockPath := filepath.Join(locksDir, name)

	if lockPath == canonicalOutput {
		return "", &LockPathCollidesWithOutputError{Path: lockPath}
	}

	return lockPath, nil
}

// ValidateOverride checks that an explicitly supplied lock path does not
// collide with outputPath after canonicalization. It performs no hashing or
// cache-directory resolution: an override is used verbatim.
func ValidateOverride(outputPath, overridePath string) error {
	canonicalOutput, err := canonicalize(outputPath)
	if err != nil {
		return fmt.Errorf("unable to canonicalize output path: %w", err)
	}
	canonicalOverride, err := canonicalize(overridePath)
	if err != nil {
		// The override lock path need not exist yet; canonicalize tolerates
		// that, so a failure here indicates a genuinely malformed path.
		return fmt.Errorf("unable to canonicalize lock path override: %w", err)
	}
	if canonicalOutput == canonicalOverride {
		return &LockPathCollidesWithOutputError{Path: canonicalOverride}
	}
	return nil
}
