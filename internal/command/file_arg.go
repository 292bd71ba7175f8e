// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/importctl/importctl/pkg/types"
)

// fileArgMarker prefixes an argument that references a materialized file.
const fileArgMarker = "@"

// reservedEntryNames are cache and dump artifacts a file argument may not shadow.
var reservedEntryNames = []string{
	contextFile, stdoutFile, stderrFile, statusFile, timestampFile, bustedFile, errorFile, failedDir,
}

// FileArg is an argument whose payload is written to disk and passed to the
// program as "@<path>".
type FileArg struct {
	Path    types.RelativePath
	Content string
}

// Validate returns an error if the path is unusable or shadows a cache artifact.
func (f FileArg) Validate() error {
	if err := f.Path.Validate(); err != nil {
		return err
	}
	first, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(filepath.FromSlash(string(f.Path)))), "/")
	if slices.Contains(reservedEntryNames, first) {
		return &types.InvalidRelativePathError{Value: f.Path, Reason: fmt.Sprintf("%q is reserved for cache artifacts", first)}
	}
	return nil
}

// placeholder is the argument text used in summaries and cache context.
func (f FileArg) placeholder() string {
	return fileArgMarker + string(f.Path)
}

// writeFileArgs writes every file argument under dir, ensuring parent
// directories first.
func writeFileArgs(dir string, fileArgs map[int]FileArg) error {
	for _, idx := range sortedFileArgIndexes(fileArgs) {
		fa := fileArgs[idx]
		target := fa.Path.Under(dir)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for file argument %s: %w", fa.Path, err)
		}
		if err := os.WriteFile(target, []byte(fa.Content), 0o644); err != nil {
			return fmt.Errorf("write file argument %s: %w", fa.Path, err)
		}
	}
	return nil
}

// materializeFileArgs writes the file arguments under dir and returns args
// with each file-argument slot rewritten to reference the absolute file path.
func materializeFileArgs(dir string, args []string, fileArgs map[int]FileArg) ([]string, error) {
	if len(fileArgs) == 0 {
		return args, nil
	}
	if err := writeFileArgs(dir, fileArgs); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve file argument directory: %w", err)
	}
	out := slices.Clone(args)
	for idx, fa := range fileArgs {
		out[idx] = fileArgMarker + fa.Path.Under(abs)
	}
	return out, nil
}

func sortedFileArgIndexes(fileArgs map[int]FileArg) []int {
	idx := make([]int, 0, len(fileArgs))
	for i := range fileArgs {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}
