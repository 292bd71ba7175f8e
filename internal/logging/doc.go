// SPDX-License-Identifier: MPL-2.0

// Package logging installs the process-wide slog handler. Call sites log
// through log/slog; this package decides where those records go and how
// they look, using a charmbracelet/log logger as the handler.
package logging
