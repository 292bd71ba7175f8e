// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/importctl/importctl/pkg/types"
)

const (
	contextFile   = "context.txt"
	stdoutFile    = "stdout.json"
	stderrFile    = "stderr.json"
	statusFile    = "status.txt"
	timestampFile = "timestamp.txt"
	bustedFile    = "busted"
	errorFile     = "error.txt"
	failedDir     = "failed"

	// timestampLayout is RFC 2822 with a numeric zone.
	timestampLayout = time.RFC1123Z
	// noStatus is written to status.txt when no process output exists.
	noStatus = "-"
)

// Cache miss reasons. They are logged, never returned to callers.
var (
	errCacheAbsent          = errors.New("no cache entry")
	errCacheBusted          = errors.New("cache entry busted")
	errCacheContextMismatch = errors.New("cache context differs")
	errCacheFileArgMismatch = errors.New("cache file argument differs")
	errCacheExpired         = errors.New("cache entry expired")
)

// lookupCache returns the stored output at dir if it was produced by the same
// summary and file-argument contents and is still fresh at now.
func lookupCache(dir, summary string, fileArgs map[int]FileArg, validFor time.Duration, now time.Time) (*Output, error) {
	storedContext, err := os.ReadFile(filepath.Join(dir, contextFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errCacheAbsent
		}
		return nil, fmt.Errorf("read %s: %w", contextFile, err)
	}

	if _, err := os.Stat(filepath.Join(dir, bustedFile)); err == nil {
		return nil, errCacheBusted
	}

	if string(storedContext) != summary {
		return nil, errCacheContextMismatch
	}

	for _, idx := range sortedFileArgIndexes(fileArgs) {
		fa := fileArgs[idx]
		stored, err := os.ReadFile(fa.Path.Under(dir))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errCacheFileArgMismatch, fa.Path, err)
		}
		if !bytes.Equal(stored, []byte(fa.Content)) {
			return nil, fmt.Errorf("%w: %s", errCacheFileArgMismatch, fa.Path)
		}
	}

	rawTimestamp, err := os.ReadFile(filepath.Join(dir, timestampFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", timestampFile, err)
	}
	storedAt, err := time.Parse(timestampLayout, strings.TrimSpace(string(rawTimestamp)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", timestampFile, err)
	}
	if now.After(storedAt.Add(validFor)) {
		return nil, fmt.Errorf("%w: stored %s, valid for %s", errCacheExpired, storedAt.Format(timestampLayout), validFor)
	}

	rawStatus, err := os.ReadFile(filepath.Join(dir, statusFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", statusFile, err)
	}
	status, err := types.ParseExitCode(strings.TrimSpace(string(rawStatus)))
	if err != nil {
		return nil, err
	}

	stdout, err := os.ReadFile(filepath.Join(dir, stdoutFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", stdoutFile, err)
	}
	stderr, err := os.ReadFile(filepath.Join(dir, stderrFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", stderrFile, err)
	}

	return &Output{Stdout: stdout, Stderr: stderr, ExitCode: status}, nil
}

// storeCache writes the entry at dir and clears its busted marker. File
// arguments are already in place from materialization.
func storeCache(dir, summary string, out *Output, now time.Time) error {
	if err := writeArtifacts(dir, summary, out, now); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, bustedFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove busted marker: %w", err)
	}
	return nil
}

// bustCache writes the zero-byte invalidation marker for the entry at dir.
func bustCache(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, bustedFile), nil, 0o644); err != nil {
		return fmt.Errorf("write busted marker: %w", err)
	}
	return nil
}

// writeArtifacts writes the five entry files shared by cache entries and
// failure dumps. A nil out records empty streams and status "-".
func writeArtifacts(dir, summary string, out *Output, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	var stdout, stderr []byte
	status := noStatus
	if out != nil {
		stdout, stderr, status = out.Stdout, out.Stderr, out.ExitCode.String()
	}

	files := []struct {
		name string
		data []byte
	}{
		{contextFile, []byte(summary)},
		{stdoutFile, stdout},
		{stderrFile, stderr},
		{statusFile, []byte(status)},
		{timestampFile, []byte(now.Format(timestampLayout))},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}
