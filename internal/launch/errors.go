package launch

import (
	"errors"
	"io/fs"
	"os/exec"
	"syscall"
)

// FailureKind groups launch errors by cause.
type FailureKind int

const (
	FailureNone       FailureKind = iota
	FailureNotFound               // Executable path does not exist or is not on PATH.
	FailurePermission             // Executable exists but may not be run.
	FailureBadFormat              // Not a binary the OS can execute.
	FailureOther                  // Resource exhaustion and anything else.
)

// String returns the label used in logs and reports.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNotFound:
		return "not found"
	case FailurePermission:
		return "permission denied"
	case FailureBadFormat:
		return "bad executable format"
	default:
		return "other"
	}
}

// Classify maps an error returned by [Starter.Start] to a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return FailureNotFound
	case errors.Is(err, fs.ErrPermission):
		return FailurePermission
	case errors.Is(err, syscall.ENOEXEC):
		return FailureBadFormat
	default:
		return FailureOther
	}
}
