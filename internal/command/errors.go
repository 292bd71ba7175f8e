// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/importctl/importctl/pkg/types"
)

var (
	// ErrSpawn is the sentinel error wrapped by SpawnError.
	ErrSpawn = errors.New("failed to start process")
	// ErrTimeout is the sentinel error wrapped by TimeoutError.
	ErrTimeout = errors.New("process timed out")
	// ErrProcessFailed is the sentinel error wrapped by ProcessError.
	ErrProcessFailed = errors.New("process failed")
	// ErrDeserialize is the sentinel error wrapped by DeserializeError.
	ErrDeserialize = errors.New("failed to parse command output")
	// ErrValidation is the sentinel error wrapped by ValidationError.
	ErrValidation = errors.New("command output rejected")
	// ErrCacheNotConfigured is returned by Bust when the builder has no cache.
	ErrCacheNotConfigured = errors.New("no cache configured")
	// ErrFileArgNotSupported is the sentinel error wrapped by FileArgKindError.
	ErrFileArgNotSupported = errors.New("file arguments not supported")
)

// displayNote is appended to failures of display-mode invocations.
const displayNote = "output was displayed, not captured: stdout and stderr are not in the failure dump"

type (
	// SpawnError is returned when the program could not be started.
	SpawnError struct {
		Summary string
		Cause   error
	}

	// TimeoutError is returned when the process outlived its timeout and was killed.
	TimeoutError struct {
		Summary string
		Timeout time.Duration
	}

	// ProcessError is returned when the process exited non-zero and was not
	// (or no longer) retryable.
	ProcessError struct {
		Summary string
		// Output is the captured output; streams are empty in display mode.
		Output          *Output
		Class           FailureClass
		Retry           RetryBehaviour
		OutputBehaviour OutputBehaviour
		// DumpDir is the failure dump, or "" when dumping failed.
		DumpDir string
	}

	// DeserializeError is returned when stdout is not the expected document.
	DeserializeError struct {
		Summary string
		Type    string
		DumpDir string
		Cause   error
	}

	// ValidationError is returned when a caller-supplied validator rejects
	// otherwise well-formed output.
	ValidationError struct {
		Summary string
		DumpDir string
		Cause   error
	}

	// FileArgKindError is returned when a file argument is attached to a kind
	// other than KindCloudCLI.
	FileArgKindError struct {
		Kind Kind
		Path types.RelativePath
	}
)

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Summary, e.Cause)
}

// Unwrap returns ErrSpawn and the cause.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawn, e.Cause} }

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s and was killed", e.Summary, e.Timeout)
}

// Unwrap returns ErrTimeout so callers can use errors.Is for programmatic detection.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Error implements the error interface.
func (e *ProcessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s exited with code %s (failure class %s, retry behaviour %s)",
		e.Summary, e.exitCode(), e.Class, e.Retry)
	if e.OutputBehaviour == OutputBehaviourDisplay {
		sb.WriteString("; ")
		sb.WriteString(displayNote)
	} else if e.Output != nil {
		if stderr := strings.TrimSpace(string(shortenStream(e.Output.Stderr))); stderr != "" {
			sb.WriteString("\nstderr:\n")
			sb.WriteString(stderr)
		}
	}
	if e.DumpDir != "" {
		sb.WriteString("\nfailure dump: ")
		sb.WriteString(e.DumpDir)
	}
	return sb.String()
}

func (e *ProcessError) exitCode() types.ExitCode {
	if e.Output == nil {
		return 1
	}
	return e.Output.ExitCode
}

// Unwrap returns ErrProcessFailed so callers can use errors.Is for programmatic detection.
func (e *ProcessError) Unwrap() error { return ErrProcessFailed }

// Error implements the error interface.
func (e *DeserializeError) Error() string {
	msg := fmt.Sprintf("failed to parse output of %s as %s: %v", e.Summary, e.Type, e.Cause)
	if e.DumpDir != "" {
		msg += "\nfailure dump: " + e.DumpDir
	}
	return msg
}

// Unwrap returns ErrDeserialize and the cause.
func (e *DeserializeError) Unwrap() []error { return []error{ErrDeserialize, e.Cause} }

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("output of %s rejected: %v", e.Summary, e.Cause)
	if e.DumpDir != "" {
		msg += "\nfailure dump: " + e.DumpDir
	}
	return msg
}

// Unwrap returns ErrValidation and the cause.
func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Cause} }

// Error implements the error interface.
func (e *FileArgKindError) Error() string {
	return fmt.Sprintf("file argument %q is not supported for %s commands (only %s)", e.Path, e.Kind, KindCloudCLI)
}

// Unwrap returns ErrFileArgNotSupported so callers can use errors.Is for programmatic detection.
func (e *FileArgKindError) Unwrap() error { return ErrFileArgNotSupported }
