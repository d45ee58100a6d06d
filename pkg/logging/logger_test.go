package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestNilLoggerSafe verifies that every method is safe to call on a nil
// *Logger and produces no output.
func TestNilLoggerSafe(t *testing.T) {
	var logger *Logger
	logger.Print("hello")
	logger.Printf("hello %s", "world")
	logger.Println("hello")
	logger.Debug("hello")
	logger.Debugf("hello")
	logger.Tracef("hello")
	logger.Warn(errors.New("boom"))
	logger.Warnf("boom")
	logger.Error(errors.New("boom"))
	logger.Errorf("boom")
	if logger.Sublogger("x") != nil {
		t.Fatal("sublogger of nil logger should be nil")
	}
}

// TestLevelFiltering verifies that messages below the configured level are
// suppressed and messages at or above it are emitted.
func TestLevelFiltering(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(LevelWarn, buffer)

	logger.Debugf("should not appear")
	if buffer.Len() != 0 {
		t.Fatalf("debug output leaked at warn level: %q", buffer.String())
	}

	logger.Warnf("should appear: %s", "reason")
	if !strings.Contains(buffer.String(), "reason") {
		t.Fatalf("warn output missing: %q", buffer.String())
	}
}

// TestSubloggerPrefix verifies that sublogger names accumulate as a dotted
// prefix in emitted output.
func TestSubloggerPrefix(t *testing.T) {
	buffer := &bytes.Buffer{}
	root := NewLogger(LevelInfo, buffer)
	child := root.Sublogger("lock").Sublogger("acquire")

	child.Printf("attempt")

	if !strings.Contains(buffer.String(), "[lock.acquire]") {
		t.Fatalf("expected dotted sublogger prefix, got: %q", buffer.String())
	}
}
