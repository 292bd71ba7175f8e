// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/importctl/importctl/internal/command"
	"github.com/importctl/importctl/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor mirrors the child's exit code for process failures and
// returns 1 for everything else.
func exitCodeFor(err error) types.ExitCode {
	var procErr *command.ProcessError
	if errors.As(err, &procErr) && procErr.Output != nil && !procErr.Output.ExitCode.IsSuccess() {
		return procErr.Output.ExitCode
	}
	return 1
}
