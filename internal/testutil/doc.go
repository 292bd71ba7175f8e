// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test on
// error instead of returning it.
//
// File helpers (MustMkdirAll, MustWriteFile, MustReadFile) sit next to POSIX
// shell-script doubles (WriteScript, CountLines, SkipOnWindows) that stand in
// for the external CLIs driven by the command engine.
package testutil
