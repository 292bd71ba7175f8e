// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package command

import (
	"os"

	"github.com/importctl/importctl/pkg/types"
)

// exitCodeOf decodes a finished process state.
func exitCodeOf(ps *os.ProcessState) types.ExitCode {
	return types.NormalizeExitCode(ps.ExitCode())
}
