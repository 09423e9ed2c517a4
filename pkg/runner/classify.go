package runner

import (
	"errors"

	"github.com/yaklabco/mdpatch/pkg/fingerprint"
	"github.com/yaklabco/mdpatch/pkg/locate"
)

// ErrorKind groups operation failures by their process exit code.
type ErrorKind int

// Error kinds, in exit code order.
const (
	KindNone ErrorKind = iota
	KindGeneral
	KindHeadingNotFound
	KindFingerprintMismatch
	KindAmbiguous
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindGeneral:
		return "general"
	case KindHeadingNotFound:
		return "heading-not-found"
	case KindFingerprintMismatch:
		return "fingerprint-mismatch"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for the kind: 0 for KindNone, 1
// for general errors, 2 to 4 for the addressing and fingerprint failures.
func (k ErrorKind) ExitCode() int {
	if k < KindNone || k > KindAmbiguous {
		return int(KindGeneral)
	}
	return int(k)
}

// Classify maps an operation error to its kind. Authorization, index, content
// and I/O failures are all general.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, fingerprint.ErrMismatch):
		return KindFingerprintMismatch
	case errors.Is(err, locate.ErrAmbiguousHeading):
		return KindAmbiguous
	case errors.Is(err, locate.ErrHeadingNotFound):
		return KindHeadingNotFound
	default:
		return KindGeneral
	}
}
