// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindCloudCLI is the cloud provider CLI. It is the only kind that
	// accepts file arguments.
	KindCloudCLI Kind = "cloud-cli"
	// KindIaCCLI is the infrastructure-as-code CLI.
	KindIaCCLI Kind = "iac-cli"
	// KindEditor opens files for review.
	KindEditor Kind = "editor"
	// KindEcho is the echo test double.
	KindEcho Kind = "echo"
	// KindShell runs ad-hoc shell commands.
	KindShell Kind = "shell"
	// KindVCS is the version control client.
	KindVCS Kind = "vcs"

	otherPrefix = "other:"
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid command kind")

type (
	// Kind is the logical identity of an external program. It resolves to an
	// executable at run time.
	Kind string

	// InvalidKindError is returned when a Kind is neither a known kind nor a
	// well-formed KindOther value.
	InvalidKindError struct {
		Value Kind
	}
)

// KindOther names an arbitrary program that is run as-is.
func KindOther(program string) Kind {
	return Kind(otherPrefix + program)
}

// Kinds returns the fixed kinds in display order.
func Kinds() []Kind {
	return []Kind{KindCloudCLI, KindIaCCLI, KindEditor, KindEcho, KindShell, KindVCS}
}

// ParseKind accepts a fixed kind name or "other:<program>".
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Validate returns an error if the Kind is not recognized.
func (k Kind) Validate() error {
	switch k {
	case KindCloudCLI, KindIaCCLI, KindEditor, KindEcho, KindShell, KindVCS:
		return nil
	}
	if program, ok := k.OtherProgram(); ok && strings.TrimSpace(program) != "" {
		return nil
	}
	return &InvalidKindError{Value: k}
}

// OtherProgram returns the program of a KindOther value.
func (k Kind) OtherProgram() (string, bool) {
	return strings.CutPrefix(string(k), otherPrefix)
}

// SupportsFileArgs reports whether file arguments may be attached.
func (k Kind) SupportsFileArgs() bool { return k == KindCloudCLI }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Error implements the error interface.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid command kind %q (valid: cloud-cli, iac-cli, editor, echo, shell, vcs, other:<program>)", e.Value)
}

// Unwrap returns ErrInvalidKind so callers can use errors.Is for programmatic detection.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }
