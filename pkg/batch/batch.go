// Package batch loads YAML batch files into patch operations.
//
// A batch file is checked in two passes: structurally against an embedded
// JSON Schema, then semantically per operation (heading paths parse, content
// is present where required, fingerprints compile). Every problem found is
// reported at once so a batch can be fixed in one edit.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdpatch/pkg/locate"
	"github.com/yaklabco/mdpatch/pkg/patch"
)

// Sentinel errors.
var (
	// ErrInvalidBatch is wrapped by every validation failure.
	ErrInvalidBatch = errors.New("invalid batch file")

	// ErrReadBatch indicates the batch file could not be read.
	ErrReadBatch = errors.New("read batch file")
)

// Entry is one operation as written in a batch file.
type Entry struct {
	File        string      `yaml:"file"        json:"file"`
	Heading     HeadingList `yaml:"heading"     json:"heading"`
	Index       int         `yaml:"index"       json:"index"`
	Operation   string      `yaml:"operation"   json:"operation"`
	Content     string      `yaml:"content"     json:"content"`
	Fingerprint string      `yaml:"fingerprint" json:"fingerprint"`
}

// HeadingList is a heading path, one ATX element per entry.
type HeadingList []string

// SplitHeading turns a path string such as "# Title ## Section" into one
// entry per marker. A string that does not parse is kept whole so that
// validation reports it.
func SplitHeading(raw string) HeadingList {
	path, err := locate.ParseHeadingPath(raw)
	if err != nil {
		return HeadingList{raw}
	}
	list := make(HeadingList, len(path))
	for i, step := range path {
		list[i] = step.String()
	}
	return list
}

// UnmarshalYAML accepts a list of elements, or a single path string which
// is split with SplitHeading.
func (h *HeadingList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*h = SplitHeading(value.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("heading: %w", err)
		}
		*h = items
		return nil
	default:
		return fmt.Errorf("heading: line %d: expected a string or a list of strings", value.Line)
	}
}

// File is the typed form of a batch file.
type File struct {
	Operations []Entry `yaml:"operations" json:"operations"`
}

// Item is a validated operation bound to its target file.
type Item struct {
	// File is the Markdown file path as written in the batch.
	File string

	Operation patch.Operation
}

// Batch is a validated batch, in declared order.
type Batch struct {
	// Source is the batch file path, or a label for in-memory input.
	Source string

	Items []Item
}

// Load reads and validates the batch file at path.
func Load(ctx context.Context, path string) (*Batch, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load batch: %w", ctx.Err())
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadBatch, path, err)
	}

	return Parse(data, path)
}

// Parse validates a batch document. source labels the input in errors.
func Parse(data []byte, source string) (*Batch, error) {
	if err := validateSchema(data); err != nil {
		return nil, withSource(err, source)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBatch, source, err)
	}

	batch := &Batch{Source: source, Items: make([]Item, 0, len(file.Operations))}

	var problems Errors
	for i, entry := range file.Operations {
		item, errs := entry.toItem(i)
		if len(errs) > 0 {
			problems = append(problems, errs...)
			continue
		}
		batch.Items = append(batch.Items, item)
	}

	if len(problems) > 0 {
		return nil, withSource(problems, source)
	}

	return batch, nil
}

// toItem validates the entry and converts it. index is the zero-based
// position of the entry in the batch.
func (e Entry) toItem(index int) (Item, Errors) {
	if errs := e.validate(index); len(errs) > 0 {
		return Item{}, errs
	}

	kind, err := patch.ParseKind(e.Operation)
	if err != nil {
		return Item{}, Errors{{Index: index, Field: "operation", Message: err.Error()}}
	}

	path, err := locate.ParseSteps(e.Heading)
	if err != nil {
		return Item{}, Errors{{Index: index, Field: "heading", Message: err.Error()}}
	}

	return Item{
		File: e.File,
		Operation: patch.Operation{
			Kind:        kind,
			Path:        path,
			Index:       e.Index,
			Content:     e.Content,
			Fingerprint: e.Fingerprint,
		},
	}, nil
}

func withSource(err error, source string) error {
	if source == "" {
		return err
	}
	return fmt.Errorf("%s: %w", source, err)
}
