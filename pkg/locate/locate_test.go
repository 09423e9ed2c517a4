package locate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdpatch/pkg/locate"
	"github.com/yaklabco/mdpatch/pkg/mdast"
	"github.com/yaklabco/mdpatch/pkg/parser"
)

const dupDoc = `# A

## Dup

in a

# B

## Dup

in b

### Leaf

leaf text
`

func mustParse(t *testing.T, content string) *mdast.Document {
	t.Helper()

	doc, err := parser.Parse(context.Background(), "test.md", []byte(content))
	require.NoError(t, err)
	return doc
}

func mustPath(t *testing.T, raw string) locate.HeadingPath {
	t.Helper()

	path, err := locate.ParseHeadingPath(raw)
	require.NoError(t, err)
	return path
}

func TestLocate(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, dupDoc)

	tests := []struct {
		name      string
		path      string
		status    locate.Status
		matches   int
		wantTitle string
	}{
		{name: "top level", path: "# A", status: locate.StatusResolved, matches: 1, wantTitle: "A"},
		{name: "duplicate alone is ambiguous", path: "## Dup", status: locate.StatusAmbiguous, matches: 2},
		{name: "parent disambiguates a", path: "# A ## Dup", status: locate.StatusResolved, matches: 1, wantTitle: "Dup"},
		{name: "parent disambiguates b", path: "# B ## Dup", status: locate.StatusResolved, matches: 1, wantTitle: "Dup"},
		{name: "nested start resolves", path: "### Leaf", status: locate.StatusResolved, matches: 1, wantTitle: "Leaf"},
		{name: "full chain", path: "# B ## Dup ### Leaf", status: locate.StatusResolved, matches: 1, wantTitle: "Leaf"},
		{name: "skipping a level is not allowed", path: "# B ### Leaf", status: locate.StatusNotFound},
		{name: "wrong level", path: "### Dup", status: locate.StatusNotFound},
		{name: "missing", path: "# C", status: locate.StatusNotFound},
		{name: "wrong parent", path: "# A ## Dup ### Leaf", status: locate.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := locate.Locate(doc, mustPath(t, tt.path))
			assert.Equal(t, tt.status, res.Status)
			assert.Len(t, res.Matches, tt.matches)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, doc.Section(res.Section).Title)
			}
		})
	}
}

func TestLocate_DisambiguatedSectionsDiffer(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, dupDoc)

	resA := locate.Locate(doc, mustPath(t, "# A ## Dup"))
	resB := locate.Locate(doc, mustPath(t, "# B ## Dup"))
	require.Equal(t, locate.StatusResolved, resA.Status)
	require.Equal(t, locate.StatusResolved, resB.Status)
	assert.NotEqual(t, resA.Section, resB.Section)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, dupDoc)

	target, err := locate.Resolve(doc, mustPath(t, "# B ## Dup"), 0)
	require.NoError(t, err)
	assert.Equal(t, "in b", string(doc.Text(doc.Blocks[target.Block])))

	_, err = locate.Resolve(doc, mustPath(t, "# B ## Dup"), 1)
	assert.ErrorIs(t, err, locate.ErrInvalidIndex)

	_, err = locate.Resolve(doc, mustPath(t, "# Missing"), 0)
	assert.ErrorIs(t, err, locate.ErrHeadingNotFound)

	_, err = locate.Resolve(doc, mustPath(t, "## Dup"), 0)
	require.ErrorIs(t, err, locate.ErrAmbiguousHeading)

	var ambiguous *locate.AmbiguousError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, 2, ambiguous.Count)
}

func TestLocate_WhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "#   Spaced   Title  #\n\nbody\n")

	res := locate.Locate(doc, locate.HeadingPath{{Level: 1, Text: "Spaced Title"}})
	assert.Equal(t, locate.StatusResolved, res.Status)
}

func TestParseHeadingPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    locate.HeadingPath
		wantErr bool
	}{
		{
			name: "single",
			raw:  "## Usage",
			want: locate.HeadingPath{{Level: 2, Text: "Usage"}},
		},
		{
			name: "nested with multi-word text",
			raw:  "# Getting Started ## Install on Linux",
			want: locate.HeadingPath{{Level: 1, Text: "Getting Started"}, {Level: 2, Text: "Install on Linux"}},
		},
		{
			name: "hash inside word is text",
			raw:  "# C# Guide",
			want: locate.HeadingPath{{Level: 1, Text: "C# Guide"}},
		},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "no marker", raw: "Usage", wantErr: true},
		{name: "too deep", raw: "####### Deep", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := locate.ParseHeadingPath(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, locate.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestParseSteps(t *testing.T) {
	t.Parallel()

	path, err := locate.ParseSteps([]string{"# T", "## F"})
	require.NoError(t, err)
	assert.Equal(t, "# T ## F", path.String())

	_, err = locate.ParseSteps(nil)
	assert.ErrorIs(t, err, locate.ErrInvalidPath)

	_, err = locate.ParseStep("##NoSpace")
	assert.ErrorIs(t, err, locate.ErrInvalidPath)

	step, err := locate.ParseStep("  ### Deep  ")
	require.NoError(t, err)
	assert.Equal(t, locate.Step{Level: 3, Text: "Deep"}, step)
}

func TestParseSteps_ElementKeptWhole(t *testing.T) {
	t.Parallel()

	path, err := locate.ParseSteps([]string{"# Issue # 42"})
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, locate.Step{Level: 1, Text: "Issue # 42"}, path[0])

	doc := mustParse(t, "# Issue # 42\n\nbody\n")
	res := locate.Locate(doc, path)
	require.Equal(t, locate.StatusResolved, res.Status)
	assert.Equal(t, "Issue # 42", doc.Section(res.Section).Title)
}
