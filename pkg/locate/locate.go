package locate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/mdast"
)

// Sentinel errors for resolution failures.
var (
	// ErrHeadingNotFound is returned when no section matches the path.
	ErrHeadingNotFound = errors.New("heading not found")

	// ErrAmbiguousHeading is returned when more than one section matches the path.
	ErrAmbiguousHeading = errors.New("ambiguous heading")

	// ErrInvalidIndex is returned when a block index is outside the section.
	ErrInvalidIndex = errors.New("block index out of range")
)

// Status is the outcome of resolving a heading path.
type Status int

// Resolution statuses.
const (
	StatusNotFound Status = iota
	StatusResolved
	StatusAmbiguous
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Result describes how a heading path resolved.
type Result struct {
	Status Status

	// Section is set when Status is StatusResolved.
	Section mdast.SectionID

	// Matches lists every section reached by the full path, in document order.
	Matches []mdast.SectionID
}

// Err converts an unresolved result into an error for path, or nil.
func (r Result) Err(path HeadingPath) error {
	switch r.Status {
	case StatusResolved:
		return nil
	case StatusAmbiguous:
		return &AmbiguousError{Path: path, Count: len(r.Matches)}
	default:
		return fmt.Errorf("%w: %s", ErrHeadingNotFound, path)
	}
}

// AmbiguousError reports a path that matched several sections.
type AmbiguousError struct {
	Path  HeadingPath
	Count int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %q matches %d sections; add a parent heading to disambiguate",
		ErrAmbiguousHeading, e.Path.String(), e.Count)
}

// Unwrap returns ErrAmbiguousHeading.
func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousHeading
}

// Locate resolves path against doc.
//
// The first step matches any section in the document with the same level and
// text; each later step must match a direct child of the section matched by
// the previous step. Every walk is explored in document order. Exactly one
// distinct terminal section resolves; none is NotFound; more is Ambiguous.
func Locate(doc *mdast.Document, path HeadingPath) Result {
	if len(path) == 0 {
		return Result{Status: StatusNotFound}
	}

	starts := doc.FindSections(func(s *mdast.Section) bool {
		return !s.IsRoot() && matches(s, path[0])
	})

	var found []mdast.SectionID
	seen := make(map[mdast.SectionID]bool)
	for _, start := range starts {
		for _, id := range descend(doc, start.ID, path[1:]) {
			if !seen[id] {
				seen[id] = true
				found = append(found, id)
			}
		}
	}

	switch len(found) {
	case 0:
		return Result{Status: StatusNotFound}
	case 1:
		return Result{Status: StatusResolved, Section: found[0], Matches: found}
	default:
		return Result{Status: StatusAmbiguous, Matches: found}
	}
}

// descend follows rest through direct children of id and returns every
// section at which the path is exhausted.
func descend(doc *mdast.Document, id mdast.SectionID, rest HeadingPath) []mdast.SectionID {
	if len(rest) == 0 {
		return []mdast.SectionID{id}
	}

	var out []mdast.SectionID
	for _, child := range doc.Section(id).Children {
		if matches(doc.Section(child), rest[0]) {
			out = append(out, descend(doc, child, rest[1:])...)
		}
	}
	return out
}

func matches(s *mdast.Section, step Step) bool {
	return s.Level == step.Level && normalize(s.Title) == normalize(step.Text)
}

// normalize trims and collapses interior whitespace runs to single spaces.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Target is a resolved block address.
type Target struct {
	Section mdast.SectionID

	// Index is the position within the section's content blocks.
	Index int

	// Block is the index into Document.Blocks.
	Block int
}

// Resolve locates path and selects the index-th content block of the match.
// It returns ErrHeadingNotFound or an *AmbiguousError when the path does not
// resolve, and ErrInvalidIndex when index is outside the section.
func Resolve(doc *mdast.Document, path HeadingPath, index int) (Target, error) {
	res := Locate(doc, path)
	if err := res.Err(path); err != nil {
		return Target{}, err
	}

	sec := doc.Section(res.Section)
	if index < 0 || index >= len(sec.Blocks) {
		return Target{}, fmt.Errorf("%w: index %d, section %q has %d blocks",
			ErrInvalidIndex, index, path.String(), len(sec.Blocks))
	}

	return Target{Section: res.Section, Index: index, Block: sec.Blocks[index]}, nil
}
