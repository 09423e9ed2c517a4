package mdast

// BlockKind classifies a content block.
type BlockKind uint8

// Block kinds recognized by the block parser.
const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockCodeBlock
	BlockList
	BlockQuote
	BlockTable
	BlockHTML
	BlockThematicBreak
	BlockFrontMatter
)

//nolint:gochecknoglobals // Read-only lookup table.
var blockKindNames = [...]string{
	BlockParagraph:     "paragraph",
	BlockHeading:       "heading",
	BlockCodeBlock:     "code_block",
	BlockList:          "list",
	BlockQuote:         "blockquote",
	BlockTable:         "table",
	BlockHTML:          "html_block",
	BlockThematicBreak: "thematic_break",
	BlockFrontMatter:   "front_matter",
}

// String returns the snake_case name of the kind.
func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "unknown"
}

// Block is a contiguous byte range of the document classified by kind.
// Range.EndOffset excludes the line break that terminates the block's last line.
type Block struct {
	Kind  BlockKind
	Range SourceRange

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int
	EndLine   int

	// Level is the heading level (1-6) for BlockHeading.
	Level int

	// Ordered is set for lists whose first marker is numeric.
	Ordered bool

	// Fence is set for fenced code blocks and front matter; nil otherwise.
	Fence *Fence
}

// Fence describes the delimiters of a fenced region.
type Fence struct {
	// Char is the fence character ('`', '~', '-' or '+').
	Char byte

	// Length is the opening fence run length.
	Length int

	// Info is the trimmed info string after the opening fence.
	Info string

	// Closed reports whether a closing fence was found.
	Closed bool

	// CloseStart is the byte offset of the closing fence line.
	// Equals Range.EndOffset when the fence is unclosed.
	CloseStart int
}

// IsFenced reports whether b is a fenced code block.
func (b Block) IsFenced() bool {
	return b.Kind == BlockCodeBlock && b.Fence != nil
}

// Len returns the length of the block in bytes.
func (b Block) Len() int {
	return b.Range.Len()
}
