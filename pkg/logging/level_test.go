package logging

import "testing"

// TestNameToLevel tests NameToLevel for both valid and invalid names.
func TestNameToLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		valid bool
	}{
		{"disabled", LevelDisabled, true},
		{"error", LevelError, true},
		{"warn", LevelWarn, true},
		{"info", LevelInfo, true},
		{"debug", LevelDebug, true},
		{"trace", LevelTrace, true},
		{"bogus", LevelDisabled, false},
		{"", LevelDisabled, false},
	}
	for _, test := range tests {
		level, ok := NameToLevel(test.name)
		if ok != test.valid {
			t.Errorf("NameToLevel(%q) validity = %v, want %v", test.name, ok, test.valid)
		}
		if level != test.level {
			t.Errorf("NameToLevel(%q) = %v, want %v", test.name, level, test.level)
		}
	}
}

// TestLevelString tests that every defined level has a non-"unknown" string.
func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDisabled, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace} {
		if level.String() == "unknown" {
			t.Errorf("level %d stringified to unknown", level)
		}
	}
}
