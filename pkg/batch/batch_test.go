package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdpatch/pkg/batch"
	"github.com/yaklabco/mdpatch/pkg/locate"
	"github.com/yaklabco/mdpatch/pkg/patch"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	data := []byte(`operations:
  - file: docs/guide.md
    heading: ["# Guide", "## Install"]
    index: 1
    operation: replace
    content: |
      Run the installer.
    fingerprint: "^Download"
  - file: docs/guide.md
    heading: "# Guide ## Usage"
    operation: append
    content: "- new item"
  - file: CHANGELOG.md
    heading:
      - "# Changelog"
    operation: delete
`)

	b, err := batch.Parse(data, "ops.yml")
	require.NoError(t, err)

	assert.Equal(t, "ops.yml", b.Source)
	require.Len(t, b.Items, 3)

	first := b.Items[0]
	assert.Equal(t, "docs/guide.md", first.File)
	assert.Equal(t, patch.KindReplace, first.Operation.Kind)
	assert.Equal(t, locate.HeadingPath{{Level: 1, Text: "Guide"}, {Level: 2, Text: "Install"}}, first.Operation.Path)
	assert.Equal(t, 1, first.Operation.Index)
	assert.Equal(t, "Run the installer.\n", first.Operation.Content)
	assert.Equal(t, "^Download", first.Operation.Fingerprint)

	second := b.Items[1]
	assert.Equal(t, patch.KindAppend, second.Operation.Kind)
	assert.Equal(t, "# Guide ## Usage", second.Operation.Path.String())
	assert.Equal(t, 0, second.Operation.Index, "index defaults to zero")

	third := b.Items[2]
	assert.Equal(t, patch.KindDelete, third.Operation.Kind)
	assert.Empty(t, third.Operation.Content)
}

func TestParse_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantIndex int
		wantField string
	}{
		{
			name:      "empty document",
			data:      "",
			wantIndex: batch.DocumentLevel,
		},
		{
			name:      "missing operations",
			data:      "ops: []\n",
			wantIndex: batch.DocumentLevel,
		},
		{
			name:      "no operations",
			data:      "operations: []\n",
			wantIndex: batch.DocumentLevel,
			wantField: "operations",
		},
		{
			name:      "negative index",
			data:      "operations:\n  - {file: a.md, heading: '# A', index: -1, operation: delete}\n",
			wantIndex: 0,
			wantField: "index",
		},
		{
			name:      "unknown operation",
			data:      "operations:\n  - {file: a.md, heading: '# A', operation: delete}\n  - {file: a.md, heading: '# A', operation: insert, content: x}\n",
			wantIndex: 1,
			wantField: "operation",
		},
		{
			name:      "heading of wrong type",
			data:      "operations:\n  - {file: a.md, heading: 3, operation: delete}\n",
			wantIndex: 0,
			wantField: "heading",
		},
		{
			name:      "unknown key",
			data:      "operations:\n  - {file: a.md, heading: '# A', operation: delete, force: true}\n",
			wantIndex: 0,
		},
		{
			name:      "not yaml",
			data:      "operations: [\n",
			wantIndex: batch.DocumentLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := batch.Parse([]byte(tt.data), "")
			require.ErrorIs(t, err, batch.ErrInvalidBatch)

			var problems batch.Errors
			require.True(t, errors.As(err, &problems), "error %v should carry batch.Errors", err)
			require.NotEmpty(t, problems)

			assert.Equal(t, tt.wantIndex, problems[0].Index, "problems: %v", problems)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, problems[0].Field, "problems: %v", problems)
			}
		})
	}
}

func TestParse_SemanticErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		entry     string
		wantField string
	}{
		{name: "append without content", entry: "{file: a.md, heading: '# A', operation: append}", wantField: "content"},
		{name: "replace with blank content", entry: "{file: a.md, heading: '# A', operation: replace, content: '   '}", wantField: "content"},
		{name: "heading without marker", entry: "{file: a.md, heading: 'Title', operation: delete}", wantField: "heading"},
		{name: "heading too deep", entry: "{file: a.md, heading: ['####### Deep'], operation: delete}", wantField: "heading"},
		{name: "bad fingerprint", entry: "{file: a.md, heading: '# A', operation: delete, fingerprint: '(unclosed'}", wantField: "fingerprint"},
		{name: "blank file", entry: "{file: '  ', heading: '# A', operation: delete}", wantField: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := "operations:\n  - {file: ok.md, heading: '# OK', operation: delete}\n  - " + tt.entry + "\n"

			_, err := batch.Parse([]byte(data), "ops.yml")
			require.ErrorIs(t, err, batch.ErrInvalidBatch)
			assert.Contains(t, err.Error(), "ops.yml")

			var problems batch.Errors
			require.True(t, errors.As(err, &problems))
			require.Len(t, problems, 1, "problems: %v", problems)
			assert.Equal(t, 1, problems[0].Index)
			assert.Equal(t, tt.wantField, problems[0].Field)
			assert.Contains(t, problems[0].Error(), "operation 2: "+tt.wantField+": ")
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	data := []byte(`operations:
  - {file: a.md, heading: '# A', operation: append}
  - {file: b.md, heading: 'nope', operation: delete}
`)

	_, err := batch.Parse(data, "")

	var problems batch.Errors
	require.True(t, errors.As(err, &problems))
	require.Len(t, problems, 2)
	assert.Equal(t, 0, problems[0].Index)
	assert.Equal(t, 1, problems[1].Index)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ops.yaml")
		require.NoError(t, os.WriteFile(path, []byte("operations:\n  - {file: a.md, heading: '# A', operation: delete}\n"), 0644))

		b, err := batch.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, path, b.Source)
		assert.Len(t, b.Items, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := batch.Load(context.Background(), filepath.Join(t.TempDir(), "none.yml"))
		require.ErrorIs(t, err, batch.ErrReadBatch)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := batch.Load(ctx, "ops.yml")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestEntry_Resolve(t *testing.T) {
	t.Parallel()

	item, err := batch.Entry{
		File:      "README.md",
		Heading:   batch.HeadingList{"# Readme", "## Usage"},
		Operation: "Append",
		Content:   "More.",
	}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, patch.KindAppend, item.Operation.Kind)
	assert.Len(t, item.Operation.Path, 2)

	_, err = batch.Entry{File: "README.md", Heading: batch.HeadingList{"# Readme"}, Operation: "replace"}.Resolve()
	require.ErrorIs(t, err, batch.ErrInvalidBatch)
	assert.Equal(t, "invalid batch file: content: is required for append and replace", err.Error())
}

func TestSplitHeading(t *testing.T) {
	t.Parallel()

	assert.Equal(t, batch.HeadingList{"# Guide", "## Usage"}, batch.SplitHeading("# Guide ## Usage"))
	assert.Equal(t, batch.HeadingList{"Title"}, batch.SplitHeading("Title"))
}

func TestParse_HeadingListElementsKeptWhole(t *testing.T) {
	t.Parallel()

	data := []byte(`operations:
  - file: notes.md
    heading: ["# Issue # 42", "## Fix"]
    operation: delete
`)

	b, err := batch.Parse(data, "ops.yml")
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, locate.HeadingPath{{Level: 1, Text: "Issue # 42"}, {Level: 2, Text: "Fix"}}, b.Items[0].Operation.Path)
}

func TestSchema_IsJSON(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(batch.Schema()), `"operations"`)
}
