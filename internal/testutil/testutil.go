// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path as a string.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// SkipOnWindows skips tests that rely on POSIX shell-script test doubles.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping: test relies on POSIX shell scripts")
	}
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its absolute path. The body is written verbatim after the shebang.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	SkipOnWindows(t)
	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + strings.TrimLeft(body, "\n")
	MustMkdirAll(t, dir, 0o755)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", path, err)
	}
	return path
}

// CountLines returns the number of newline-terminated records in path,
// or zero when the file does not exist. Script doubles append one line per
// invocation to a counter file, which tests read back with this helper.
func CountLines(t testing.TB, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.Count(string(data), "\n")
}
