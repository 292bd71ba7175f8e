// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries remediation steps and may link a catalog Issue whose
// Markdown guidance is rendered with glamour when a CLI command fails.
package issue
