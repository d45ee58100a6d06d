package random

import (
	"testing"
	"time"
)

// TestJitterZeroMax verifies that a non-positive max always yields 0 with
// no error.
func TestJitterZeroMax(t *testing.T) {
	if d, err := Jitter(0); err != nil || d != 0 {
		t.Errorf("Jitter(0) = (%v, %v), want (0, nil)", d, err)
	}
	if d, err := Jitter(-time.Second); err != nil || d != 0 {
		t.Errorf("Jitter(-1s) = (%v, %v), want (0, nil)", d, err)
	}
}

// TestJitterRange verifies that Jitter stays within [0, max) across several
// draws.
func TestJitterRange(t *testing.T) {
	const max = 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d, err := Jitter(max)
		if err != nil {
			t.Fatal("unable to generate jitter:", err)
		}
		if d < 0 || d >= max {
			t.Fatalf("jitter %v out of range [0, %v)", d, max)
		}
	}
}
