// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic. sync.OnceValue re-panics on
// every call after a panic, creating a persistent crash condition.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the type of application sandbox the current process is running in.
// The result is cached after the first call.
//
// Detection methods:
//   - Flatpak: Checks for existence of /.flatpak-info
//   - Snap: Checks for SNAP_NAME environment variable
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand returns the executable and leading arguments that launch
// program on the host from inside sandbox st. Flatpak escapes through
// "flatpak-spawn --host"; Snap confinement and no sandbox run program directly.
func HostCommand(st SandboxType, program string) (string, []string) {
	switch st {
	case SandboxFlatpak:
		return "flatpak-spawn", []string{"--host", program}
	case SandboxNone, SandboxSnap:
		return program, nil
	default:
		return program, nil
	}
}

// detectSandboxFrom performs sandbox detection using the provided lookup functions.
// Accepting lookupEnv and statFile as parameters allows tests to inject custom
// behavior without mutating process-wide state.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence: /.flatpak-info is always present inside it.
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}

	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}

	return SandboxNone
}

// statFile is the production adapter for detectSandboxFrom, wrapping os.Stat
// to match the func(string) error signature.
func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
