package mdast_test

import (
	"testing"

	"github.com/yaklabco/mdpatch/pkg/mdast"
)

// sampleDocument builds "# A\n\ntext\n\n## B\n\n- x\n" by hand.
func sampleDocument() *mdast.Document {
	content := "# A\n\ntext\n\n## B\n\n- x\n"
	doc := newDocument(content)
	doc.Blocks = []mdast.Block{
		{Kind: mdast.BlockHeading, Range: mdast.SourceRange{StartOffset: 0, EndOffset: 3}, Level: 1},
		{Kind: mdast.BlockParagraph, Range: mdast.SourceRange{StartOffset: 5, EndOffset: 9}},
		{Kind: mdast.BlockHeading, Range: mdast.SourceRange{StartOffset: 11, EndOffset: 15}, Level: 2},
		{Kind: mdast.BlockList, Range: mdast.SourceRange{StartOffset: 17, EndOffset: 20}},
	}
	doc.Sections = []mdast.Section{
		{ID: 0, Parent: mdast.NoSection, Heading: -1, Children: []mdast.SectionID{1}},
		{ID: 1, Parent: 0, Level: 1, Title: "A", Heading: 0, Blocks: []int{1}, Children: []mdast.SectionID{2}},
		{ID: 2, Parent: 1, Level: 2, Title: "B", Heading: 2, Blocks: []int{3}},
	}
	return doc
}

func TestDocument_Segments(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	var rebuilt []byte
	blocks := 0
	for _, seg := range doc.Segments() {
		rebuilt = append(rebuilt, seg.Range.Slice(doc.Content)...)
		if seg.Block >= 0 {
			blocks++
		}
	}

	if string(rebuilt) != string(doc.Content) {
		t.Errorf("segments do not reproduce content:\n got %q\nwant %q", rebuilt, doc.Content)
	}
	if blocks != len(doc.Blocks) {
		t.Errorf("expected %d block segments, got %d", len(doc.Blocks), blocks)
	}
}

func TestDocument_ChildBlock(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	blk, ok := doc.ChildBlock(2, 0)
	if !ok {
		t.Fatal("expected block 0 of section B")
	}
	if got := string(doc.Text(blk)); got != "- x" {
		t.Errorf("Text() = %q, want %q", got, "- x")
	}

	if _, ok := doc.ChildBlock(2, 1); ok {
		t.Error("expected out-of-range index to report false")
	}
	if _, ok := doc.ChildBlock(9, 0); ok {
		t.Error("expected unknown section to report false")
	}
}

func TestDocument_Ancestry(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	chain := doc.Ancestry(2)
	if len(chain) != 2 || chain[0].Title != "A" || chain[1].Title != "B" {
		t.Errorf("unexpected ancestry: %+v", chain)
	}

	if len(doc.Ancestry(mdast.RootSection)) != 0 {
		t.Error("root should have empty ancestry")
	}
}

func TestDocument_WalkSections(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	var titles []string
	var depths []int
	err := doc.WalkSections(mdast.RootSection, func(s *mdast.Section, depth int) error {
		titles = append(titles, s.Title)
		depths = append(depths, depth)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkSections() error = %v", err)
	}

	if len(titles) != 3 || titles[1] != "A" || titles[2] != "B" {
		t.Errorf("unexpected walk order: %v", titles)
	}
	if depths[2] != 2 {
		t.Errorf("expected depth 2 for B, got %d", depths[2])
	}

	found := doc.FindFirstSection(func(s *mdast.Section) bool { return s.Level == 2 })
	if found == nil || found.Title != "B" {
		t.Errorf("FindFirstSection() = %+v", found)
	}
}

func TestDocument_LineEnding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "lf", content: "a\nb\n", want: "\n"},
		{name: "crlf", content: "a\r\nb\r\n", want: "\r\n"},
		{name: "none", content: "a", want: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := newDocument(tt.content).LineEnding(); got != tt.want {
				t.Errorf("LineEnding() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBlockKind_String(t *testing.T) {
	t.Parallel()

	if got := mdast.BlockCodeBlock.String(); got != "code_block" {
		t.Errorf("String() = %q", got)
	}
	if got := mdast.BlockKind(200).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}
