package mutx

import "testing"

// TestVersionFormat ensures Version is populated in dotted form.
func TestVersionFormat(t *testing.T) {
	want := "0.1.0"
	if Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}
