// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/importctl/importctl/internal/clock"
)

// runState is a step of the invocation lifecycle.
type runState int

const (
	// stateRunning checks the cache, materializes file arguments, spawns
	// the process and awaits it.
	stateRunning runState = iota
	// stateClassify decides between success, one retry and failure.
	stateClassify
	// stateRetryOnce recovers from a transient failure and re-enters
	// stateRunning with retries disabled.
	stateRetryOnce
)

// attempt is the result of one pass through stateRunning.
type attempt struct {
	output *Output
	// loginGeneration is the login count observed before spawning.
	loginGeneration uint64
}

// RunRaw runs the invocation and returns its captured output. Non-zero
// exits are retried at most once when they look transient and the retry
// behaviour allows it; otherwise they are dumped and returned as a
// *ProcessError.
func (b *Builder) RunRaw(ctx context.Context) (*Output, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}

	var (
		current = b
		state   = stateRunning
		res     attempt
		class   FailureClass
	)
	for {
		switch state {
		case stateRunning:
			var err error
			if res, err = current.runOnce(ctx); err != nil {
				return nil, err
			}
			if res.output.Success() {
				return res.output, nil
			}
			state = stateClassify

		case stateClassify:
			class = FailureOther
			if current.output == OutputBehaviourCapture {
				class = Classify(res.output.Stderr)
			}
			if current.retry != RetryBehaviourRetry || !class.Retryable() {
				return nil, current.fail(res.output, class)
			}
			state = stateRetryOnce

		case stateRetryOnce:
			if err := current.prepareRetry(ctx, class, res.loginGeneration); err != nil {
				return nil, err
			}
			current = current.Clone().UseRetryBehaviour(RetryBehaviourFail)
			state = stateRunning
		}
	}
}

// runOnce serves the invocation from the cache or spawns it once.
func (b *Builder) runOnce(ctx context.Context) (attempt, error) {
	e := b.engine
	summary := b.Summarize()

	level := slog.LevelDebug
	if b.announce {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "running command", "summary", summary)

	var entryDir string
	if b.cache.active() && b.output == OutputBehaviourCapture {
		entryDir, _ = b.CacheEntryDir()
		out, err := lookupCache(entryDir, summary, b.fileArgs, b.cache.ValidFor, e.clock.Now())
		if err == nil {
			slog.Debug("cache hit", "summary", summary, "dir", entryDir)
			return attempt{output: out}, nil
		}
		slog.Debug("cache miss", "summary", summary, "dir", entryDir, "reason", err)
	}

	program, err := e.resolver.Resolve(b.kind)
	if err != nil {
		return attempt{}, &SpawnError{Summary: summary, Cause: err}
	}

	args, cleanup, err := b.materialize(entryDir)
	if err != nil {
		return attempt{}, fmt.Errorf("prepare file arguments for %s: %w", summary, err)
	}
	defer cleanup()

	generation := e.loginLock.Generation()
	out, err := runProcess(ctx, spawnRequest{
		program: program,
		args:    args,
		env:     b.env,
		dir:     b.runDir,
		output:  b.output,
		stdin:   b.stdin,
		timeout: b.timeout,
		summary: summary,
	}, e.terminal)
	if err != nil {
		slog.Error("command did not complete", "summary", summary, "error", err)
		return attempt{}, err
	}

	if out.Success() && entryDir != "" {
		if err := storeCache(entryDir, summary, out, e.clock.Now()); err != nil {
			slog.Warn("failed to store cache entry", "summary", summary, "dir", entryDir, "error", err)
		}
	}
	return attempt{output: out, loginGeneration: generation}, nil
}

// materialize writes file arguments and returns the arguments to spawn with.
// With an active cache entry the files live in the entry directory, which is
// busted until the next successful store. Otherwise they go to a temporary
// directory removed by cleanup.
func (b *Builder) materialize(entryDir string) ([]string, func(), error) {
	args := b.effectiveArgs()
	noop := func() {}
	if len(b.fileArgs) == 0 {
		return args, noop, nil
	}

	if entryDir != "" {
		if err := bustCache(entryDir); err != nil {
			return nil, nil, err
		}
		out, err := materializeFileArgs(entryDir, args, b.fileArgs)
		if err != nil {
			return nil, nil, err
		}
		return out, noop, nil
	}

	tmp, err := os.MkdirTemp(b.engine.tempDir, "importctl-fileargs-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create file argument directory: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(tmp); err != nil {
			slog.Debug("failed to remove file argument directory", "dir", tmp, "error", err)
		}
	}
	out, err := materializeFileArgs(tmp, args, b.fileArgs)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return out, cleanup, nil
}

// prepareRetry prepares the single retry of a transient failure.
func (b *Builder) prepareRetry(ctx context.Context, class FailureClass, seenGeneration uint64) error {
	e := b.engine
	summary := b.Summarize()

	switch class {
	case FailureRateLimited:
		slog.Warn("rate limited, retrying once", "summary", summary, "backoff", RateLimitBackoff)
		if err := clock.Sleep(ctx, e.clock, RateLimitBackoff); err != nil {
			return fmt.Errorf("rate limit backoff for %s: %w", summary, err)
		}
	case FailureCredentialExpired:
		slog.Warn("credentials expired, retrying once after login", "summary", summary)
		if err := e.reauthenticate(ctx, seenGeneration); err != nil {
			return fmt.Errorf("reauthenticate for %s: %w", summary, err)
		}
	}
	return nil
}

// reauthenticate makes sure a login has completed since seenGeneration.
// The first caller to take the lock runs the login command; callers that
// find it held wait for that login instead of starting their own.
func (e *Engine) reauthenticate(ctx context.Context, seenGeneration uint64) error {
	lock := e.loginLock
	if !lock.TryAcquire() {
		slog.Debug("waiting for login in progress")
		if err := lock.Acquire(ctx); err != nil {
			return fmt.Errorf("wait for login: %w", err)
		}
		lock.Release()
		return nil
	}
	defer lock.Release()

	if lock.Generation() != seenGeneration {
		slog.Debug("credentials already refreshed")
		return nil
	}

	login := e.loginBuilder()
	if _, err := login.RunRaw(ctx); err != nil {
		// The retry still runs and reports the credential failure.
		slog.Error("login failed", "summary", login.Summarize(), "error", err)
		return nil
	}
	lock.markLoggedIn()
	return nil
}

// fail dumps a non-retryable failure and returns it as a *ProcessError.
func (b *Builder) fail(out *Output, class FailureClass) error {
	summary := b.Summarize()
	cause := fmt.Errorf("exited with code %s (failure class %s, retry behaviour %s)", out.ExitCode, class, b.retry)
	err := &ProcessError{
		Summary:         summary,
		Output:          out,
		Class:           class,
		Retry:           b.retry,
		OutputBehaviour: b.output,
		DumpDir:         b.engine.dump(b, summary, out, cause),
	}
	slog.Error("command failed", "summary", summary, "exit_code", out.ExitCode, "class", class, "dump", err.DumpDir)
	return err
}
