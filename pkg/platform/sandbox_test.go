// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"os"
	"slices"
	"testing"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	present := func(string) error { return nil }
	absent := func(string) error { return os.ErrNotExist }

	tests := []struct {
		name string
		env  map[string]string
		stat func(string) error
		want SandboxType
	}{
		{"no sandbox", nil, absent, SandboxNone},
		{"flatpak", nil, present, SandboxFlatpak},
		{"snap", map[string]string{"SNAP_NAME": "importctl"}, absent, SandboxSnap},
		{"flatpak wins over snap", map[string]string{"SNAP_NAME": "importctl"}, present, SandboxFlatpak},
		{"stat error other than not-exist", nil, func(string) error { return errors.New("EACCES") }, SandboxNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lookup := func(k string) string { return tt.env[k] }
			if got := detectSandboxFrom(lookup, tt.stat); got != tt.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		st         SandboxType
		wantPath   string
		wantPrefix []string
	}{
		{SandboxNone, "az", nil},
		{SandboxSnap, "az", nil},
		{SandboxFlatpak, "flatpak-spawn", []string{"--host", "az"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			t.Parallel()
			path, prefix := HostCommand(tt.st, "az")
			if path != tt.wantPath || !slices.Equal(prefix, tt.wantPrefix) {
				t.Errorf("HostCommand(%q) = %q %v, want %q %v", tt.st, path, prefix, tt.wantPath, tt.wantPrefix)
			}
		})
	}
}
