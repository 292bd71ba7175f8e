// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// processWaitDelay bounds how long Wait keeps draining output after the
// process is killed or exits with inherited pipes still open.
const processWaitDelay = 2 * time.Second

type (
	// spawnRequest is everything the runner needs for one process.
	spawnRequest struct {
		program Program
		args    []string
		env     map[string]string
		dir     string
		output  OutputBehaviour
		stdin   *string
		timeout time.Duration
		summary string
	}

	// stdio is where display-mode processes read and write.
	stdio struct {
		in  io.Reader
		out io.Writer
		err io.Writer
	}
)

// runProcess spawns the program and waits for it. A non-zero exit is not an
// error here; only spawn failures, timeouts and cancellation are.
func runProcess(ctx context.Context, req spawnRequest, terminal stdio) (*Output, error) {
	waitCtx := ctx
	if req.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, req.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(waitCtx, req.program.Path, req.program.argv(req.args)...)
	cmd.WaitDelay = processWaitDelay
	cmd.Dir = req.dir
	cmd.Env = buildEnv(os.Environ(), req.env)

	var stdout, stderr bytes.Buffer
	switch req.output {
	case OutputBehaviourDisplay:
		cmd.Stdout = terminal.out
		cmd.Stderr = terminal.err
		if req.stdin == nil {
			cmd.Stdin = terminal.in
		}
	default:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	var stdinPipe io.WriteCloser
	if req.stdin != nil {
		var err error
		if stdinPipe, err = cmd.StdinPipe(); err != nil {
			return nil, &SpawnError{Summary: req.summary, Cause: err}
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Summary: req.summary, Cause: err}
	}

	// Feed stdin concurrently so a chatty child never blocks on a full
	// stdout pipe while we block on its stdin.
	var g errgroup.Group
	if stdinPipe != nil {
		payload := *req.stdin
		g.Go(func() error {
			defer stdinPipe.Close()
			_, err := io.WriteString(stdinPipe, payload)
			return err
		})
	}

	waitErr := cmd.Wait()
	if err := g.Wait(); err != nil {
		// The child may exit without reading all of its input.
		slog.Debug("stdin write ended early", "summary", req.summary, "error", err)
	}

	if waitErr != nil && waitCtx.Err() != nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s: %w", req.summary, err)
		}
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Summary: req.summary, Timeout: req.timeout}
		}
	}

	if waitErr != nil && cmd.ProcessState == nil {
		return nil, &SpawnError{Summary: req.summary, Cause: waitErr}
	}
	if waitErr != nil && !errors.As(waitErr, new(*exec.ExitError)) {
		slog.Debug("process wait reported an error after exit", "summary", req.summary, "error", waitErr)
	}

	return &Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCodeOf(cmd.ProcessState),
	}, nil
}

// buildEnv overlays extra on base and sorts the result by key so the child
// environment is deterministic.
func buildEnv(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[k] = v
	}
	maps.Copy(merged, extra)

	env := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		env = append(env, k+"="+merged[k])
	}
	return env
}
