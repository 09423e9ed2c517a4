package cli

import (
	"errors"

	"github.com/yaklabco/mdpatch/pkg/runner"
)

// Exit codes for mdpatch.
const (
	// ExitSuccess indicates every operation applied or was already applied.
	ExitSuccess = 0

	// ExitGeneral covers usage, configuration, I/O and validation errors.
	ExitGeneral = 1

	// ExitNotFound indicates a heading path did not resolve.
	ExitNotFound = 2

	// ExitFingerprintMismatch indicates a fingerprint did not match its target.
	ExitFingerprintMismatch = 3

	// ExitAmbiguous indicates a heading path matched more than one section.
	ExitAmbiguous = 4
)

// ErrOperationsFailed is returned when a run finished with failed operations.
// The failures have already been reported.
var ErrOperationsFailed = errors.New("one or more operations failed")

// ExitError carries the process exit code for a command error.
type ExitError struct {
	Code int
	Err  error

	// Silent is set when the error was already written to the user.
	Silent bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Single-operation errors outside a run, such as from inspect.
	if kind := runner.Classify(err); kind != runner.KindGeneral {
		return kind.ExitCode()
	}

	return ExitGeneral
}

// IsSilent reports whether err was already presented to the user.
func IsSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Silent
}

// exitCodeFromResult turns failed operations into an ExitError.
func exitCodeFromResult(result *runner.Result) error {
	if result == nil {
		return nil
	}

	code := result.ExitCode()
	if code == ExitSuccess {
		return nil
	}

	return &ExitError{Code: code, Err: ErrOperationsFailed, Silent: true}
}
