package housekeeping

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Summary formats a one-line result for label ("lock file", "backup file")
// in the "Cleaned N label(s) (SIZE)" / "Would clean N label(s) (SIZE)" form
// the CLI prints after a housekeeping pass, where SIZE is the humanized total
// size of the affected entries.
func (r *Report) Summary(label string) string {
	deleted, wouldDelete, _ := r.Counts()
	count := deleted
	verb := "Cleaned"
	if r.DryRun {
		count = wouldDelete
		verb = "Would clean"
	}
	reclaimed := humanize.Bytes(uint64(r.BytesAffected()))
	return fmt.Sprintf("%s %d %s(s) (%s)", verb, count, label, reclaimed)
}

// Verbose formats one line per entry, naming its path, disposition, and
// (for anything not skipped) a humanized age and size.
func (r *Report) Verbose() string {
	lines := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Action == Skipped {
			lines = append(lines, fmt.Sprintf("  skip  %s", e.Path))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s  %s (%s, last modified %s)",
			verbTag(e.Action), e.Path, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime)))
	}
	return strings.Join(lines, "\n")
}

func verbTag(a Action) string {
	if a == Deleted {
		return "clean"
	}
	return "would-clean"
}
