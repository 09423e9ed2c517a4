package mdast

import "bytes"

// SectionID is a handle into Document.Sections.
type SectionID int

// Section handles with special meaning.
const (
	// RootSection is the implicit section holding content before the first heading.
	RootSection SectionID = 0

	// NoSection marks the absent parent of the root.
	NoSection SectionID = -1
)

// Section is a heading-introduced scope, or the implicit root.
type Section struct {
	ID     SectionID
	Parent SectionID

	// Level is the heading level (1-6), or 0 for the root.
	Level int

	// Title is the heading text, trimmed, with any closing '#' sequence removed.
	Title string

	// Heading is the index of the heading block in Document.Blocks, or -1 for the root.
	Heading int

	// Blocks lists indices into Document.Blocks for the non-heading content
	// directly under this section, in document order.
	Blocks []int

	// Children lists the subsections in document order.
	Children []SectionID
}

// IsRoot reports whether s is the implicit root section.
func (s *Section) IsRoot() bool {
	return s.ID == RootSection
}

// Document is the parsed, immutable form of a Markdown file.
// All offsets refer to Content.
type Document struct {
	// Path is the file path, used for display only.
	Path string

	// Content is the original bytes.
	Content []byte

	// Lines is the line table built by BuildLines.
	Lines []LineInfo

	// Blocks holds every block, headings included, ordered by start offset.
	Blocks []Block

	// Sections is the section arena; index 0 is the root.
	Sections []Section
}

// Root returns the root section.
func (d *Document) Root() *Section {
	return &d.Sections[RootSection]
}

// Section returns the section with the given handle, or nil if out of range.
func (d *Document) Section(id SectionID) *Section {
	if id < 0 || int(id) >= len(d.Sections) {
		return nil
	}
	return &d.Sections[id]
}

// Text returns the bytes of a block.
func (d *Document) Text(b Block) []byte {
	return b.Range.Slice(d.Content)
}

// ChildBlock returns the index-th content block of a section.
func (d *Document) ChildBlock(id SectionID, index int) (Block, bool) {
	sec := d.Section(id)
	if sec == nil || index < 0 || index >= len(sec.Blocks) {
		return Block{}, false
	}
	return d.Blocks[sec.Blocks[index]], true
}

// Ancestry returns the sections from the outermost heading down to id.
// The root is not included.
func (d *Document) Ancestry(id SectionID) []*Section {
	var chain []*Section
	for cur := d.Section(id); cur != nil && !cur.IsRoot(); cur = d.Section(cur.Parent) {
		chain = append(chain, cur)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain
}

// LineEnding returns the document's dominant line break, "\r\n" or "\n".
// Documents without line breaks report "\n".
func (d *Document) LineEnding() string {
	crlf := bytes.Count(d.Content, []byte("\r\n"))
	lf := bytes.Count(d.Content, []byte("\n")) - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

// Segment is one piece of the document: either a block or the separator bytes
// between two blocks.
type Segment struct {
	Range SourceRange

	// Block is the index into Document.Blocks, or -1 for separators.
	Block int
}

// Segments partitions the document into blocks and separators in order.
// Concatenating the segments' bytes reproduces Content exactly.
func (d *Document) Segments() []Segment {
	segments := make([]Segment, 0, 2*len(d.Blocks)+1)
	pos := 0

	for idx, blk := range d.Blocks {
		if blk.Range.StartOffset > pos {
			segments = append(segments, Segment{
				Range: SourceRange{StartOffset: pos, EndOffset: blk.Range.StartOffset},
				Block: -1,
			})
		}
		segments = append(segments, Segment{Range: blk.Range, Block: idx})
		pos = blk.Range.EndOffset
	}

	if pos < len(d.Content) {
		segments = append(segments, Segment{
			Range: SourceRange{StartOffset: pos, EndOffset: len(d.Content)},
			Block: -1,
		})
	}

	return segments
}
