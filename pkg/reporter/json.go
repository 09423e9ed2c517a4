package reporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/mdpatch/pkg/runner"
)

// JSONReporter writes the batch result document.
type JSONReporter struct {
	opts Options
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts}
}

// Report implements Reporter. A nil result is reported as a successful
// no-op with no changes.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) error {
	if result == nil {
		result = &runner.Result{Success: true, IsNoop: true}
	}
	if result.Changes == nil {
		copied := *result
		copied.Changes = []runner.Change{}
		result = &copied
	}

	var (
		data []byte
		err  error
	)
	if r.opts.Compact {
		data, err = json.Marshal(result)
	} else {
		data, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if _, err := r.opts.Writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}
