package diff

import (
	"strings"
	"unicode/utf8"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Stats summarizes the size of a diff.
type Stats struct {
	// LinesAdded and LinesRemoved count diff lines.
	LinesAdded   int
	LinesRemoved int

	// CharsInserted and CharsDeleted count runes changed within the
	// removed and added lines of each hunk.
	CharsInserted int
	CharsDeleted  int
}

// IsZero reports whether the stats describe no change.
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// Stats computes line and character statistics. A nil diff has zero stats.
func (d *Diff) Stats() Stats {
	if d == nil {
		return Stats{}
	}

	stats := Stats{LinesAdded: d.Additions, LinesRemoved: d.Deletions}

	dmp := diffpatch.New()
	// No deadline: the result must not depend on machine speed.
	dmp.DiffTimeout = 0

	for _, hunk := range d.Hunks {
		removed, added := hunk.changedText()
		if removed == "" && added == "" {
			continue
		}

		diffs := dmp.DiffMain(removed, added, false)
		for _, change := range dmp.DiffCleanupSemantic(diffs) {
			switch change.Type {
			case diffpatch.DiffInsert:
				stats.CharsInserted += utf8.RuneCountInString(change.Text)
			case diffpatch.DiffDelete:
				stats.CharsDeleted += utf8.RuneCountInString(change.Text)
			case diffpatch.DiffEqual:
			}
		}
	}

	return stats
}

// changedText joins the removed and the added lines of a hunk.
func (h Hunk) changedText() (string, string) {
	var removed, added strings.Builder
	for _, line := range h.Lines {
		switch line.Kind {
		case LineRemove:
			removed.WriteString(line.Content)
			removed.WriteByte('\n')
		case LineAdd:
			added.WriteString(line.Content)
			added.WriteByte('\n')
		case LineContext:
		}
	}
	return removed.String(), added.String()
}
