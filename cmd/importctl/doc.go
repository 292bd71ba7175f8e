// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for importctl.
//
// This package implements the Cobra command hierarchy: running a single
// external command through the execution engine, inspecting and busting the
// output cache, re-authenticating the cloud CLI, and managing configuration.
package cmd
