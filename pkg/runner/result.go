package runner

import (
	"time"

	"github.com/yaklabco/mdpatch/pkg/batch"
	"github.com/yaklabco/mdpatch/pkg/diff"
)

// Status is the outcome of one operation as reported to users.
type Status string

// Change statuses.
const (
	StatusApplied Status = "applied"
	StatusNoop    Status = "noop"
	StatusDryRun  Status = "dry-run"
	StatusError   Status = "error"
)

// Change is the result of one operation.
type Change struct {
	File      string `json:"file"`
	Operation string `json:"operation"`

	// Heading is the heading path joined into one string.
	Heading string `json:"heading"`
	Index   int    `json:"index"`
	Status  Status `json:"status"`

	// Error is the failure message when Status is StatusError.
	Error string `json:"error,omitempty"`

	// Backup is the path of the snapshot written before the change.
	Backup string `json:"backup,omitempty"`

	// Err is the underlying failure, classified by Kind.
	Err  error     `json:"-"`
	Kind ErrorKind `json:"-"`

	// Diff is set for applied and dry-run changes.
	Diff *diff.Diff `json:"-"`

	// Warnings holds content guard findings that did not fail the operation.
	Warnings []string `json:"warnings,omitempty"`

	Duration time.Duration `json:"-"`
}

func newChange(item batch.Item) Change {
	return Change{
		File:      item.File,
		Operation: item.Operation.Kind.String(),
		Heading:   item.Operation.Path.String(),
		Index:     item.Operation.Index,
	}
}

// Failed reports whether the operation ended in an error.
func (c *Change) Failed() bool {
	return c.Status == StatusError
}

// Stats returns the size of the change; zero for no-ops and failures.
func (c *Change) Stats() diff.Stats {
	return c.Diff.Stats()
}

func (c *Change) fail(err error) {
	c.Status = StatusError
	c.Err = err
	c.Kind = Classify(err)
	c.Error = err.Error()
}

// Result is the outcome of a run, serialized as the batch result document.
type Result struct {
	// Success is true when no operation failed.
	Success bool `json:"success"`

	// Applied is true when at least one change was written.
	Applied bool `json:"applied"`

	// IsNoop is true when every executed operation was a no-op.
	IsNoop bool `json:"is_noop"`

	// Changes holds one entry per executed operation, in declared order.
	Changes []Change `json:"changes"`

	// DryRun records that nothing was written.
	DryRun bool `json:"-"`

	// Skipped counts operations not executed after a fail-fast stop or
	// cancellation.
	Skipped int `json:"-"`

	Duration time.Duration `json:"-"`
}

// Counts summarizes a result by status.
type Counts struct {
	Applied int
	Noop    int
	DryRun  int
	Failed  int
	Skipped int
}

// Counts tallies the changes by status.
func (r *Result) Counts() Counts {
	counts := Counts{Skipped: r.Skipped}
	for i := range r.Changes {
		switch r.Changes[i].Status {
		case StatusApplied:
			counts.Applied++
		case StatusNoop:
			counts.Noop++
		case StatusDryRun:
			counts.DryRun++
		case StatusError:
			counts.Failed++
		}
	}
	return counts
}

// FirstFailure returns the earliest failed change in declared order.
func (r *Result) FirstFailure() (*Change, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Changes {
		if r.Changes[i].Failed() {
			return &r.Changes[i], true
		}
	}
	return nil, false
}

// ExitCode is the exit code of the first failed operation, or 0.
func (r *Result) ExitCode() int {
	failure, ok := r.FirstFailure()
	if !ok {
		return KindNone.ExitCode()
	}
	return failure.Kind.ExitCode()
}

func (r *Result) finish() {
	counts := r.Counts()
	r.Success = counts.Failed == 0 && r.Skipped == 0
	r.Applied = counts.Applied > 0
	r.IsNoop = counts.Failed == 0 && counts.Applied == 0 && counts.DryRun == 0
	if r.Changes == nil {
		r.Changes = []Change{}
	}
}
