package mdast

// WalkFunc is the function signature for WalkSections callbacks.
// depth is 0 for the root. Return a non-nil error to stop the walk.
type WalkFunc func(s *Section, depth int) error

// WalkSections performs a pre-order, document-order traversal of the section
// tree starting at start. If walkFunc returns a non-nil error, the walk stops
// immediately and returns that error.
func (d *Document) WalkSections(start SectionID, walkFunc WalkFunc) error {
	return d.walk(start, 0, walkFunc)
}

func (d *Document) walk(id SectionID, depth int, walkFunc WalkFunc) error {
	sec := d.Section(id)
	if sec == nil {
		return nil
	}

	if err := walkFunc(sec, depth); err != nil {
		return err
	}

	for _, child := range sec.Children {
		if err := d.walk(child, depth+1, walkFunc); err != nil {
			return err
		}
	}

	return nil
}

// FindSections returns all sections matching the predicate, in document order.
func (d *Document) FindSections(predicate func(s *Section) bool) []*Section {
	var result []*Section

	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	d.WalkSections(RootSection, func(s *Section, _ int) error {
		if predicate(s) {
			result = append(result, s)
		}
		return nil
	})

	return result
}

// FindFirstSection returns the first section matching the predicate, or nil.
func (d *Document) FindFirstSection(predicate func(s *Section) bool) *Section {
	var found *Section

	//nolint:errcheck,revive // errStopWalk is expected and intentionally ignored
	d.WalkSections(RootSection, func(s *Section, _ int) error {
		if predicate(s) {
			found = s
			return errStopWalk
		}
		return nil
	})

	return found
}

// errStopWalk is a sentinel error used to stop walking early.
var errStopWalk = &stopWalkError{}

type stopWalkError struct{}

func (e *stopWalkError) Error() string {
	return "stop walk"
}
