// SPDX-License-Identifier: MPL-2.0

//go:build unix

package command

import (
	"log/slog"
	"os"
	"syscall"

	"github.com/importctl/importctl/pkg/types"

	"golang.org/x/sys/unix"
)

// exitCodeOf decodes a finished process state. A signal-terminated process
// reports -1, which NormalizeExitCode clamps to 1.
func exitCodeOf(ps *os.ProcessState) types.ExitCode {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		slog.Debug("process terminated by signal", "signal", unix.SignalName(ws.Signal()), "pid", ps.Pid())
	}
	return types.NormalizeExitCode(ps.ExitCode())
}
