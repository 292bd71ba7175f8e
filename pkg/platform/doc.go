// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities: GOOS name
// constants, detection of application sandboxes that require external
// programs to be launched on the host, and the file names Windows reserves.
package platform
