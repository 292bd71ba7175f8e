// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"cloud-cli", KindCloudCLI, false},
		{" iac-cli ", KindIaCCLI, false},
		{"editor", KindEditor, false},
		{"echo", KindEcho, false},
		{"shell", KindShell, false},
		{"vcs", KindVCS, false},
		{"other:kubectl", KindOther("kubectl"), false},
		{"other:", "", true},
		{"other:   ", "", true},
		{"", "", true},
		{"CLOUD-CLI", "", true},
		{"docker", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidKind) {
					t.Errorf("errors.Is(err, ErrInvalidKind) = false for %v", err)
				}
				var kindErr *InvalidKindError
				if !errors.As(err, &kindErr) {
					t.Errorf("error should be *InvalidKindError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKind_OtherProgram(t *testing.T) {
	t.Parallel()

	program, ok := KindOther("/usr/bin/jq").OtherProgram()
	if !ok || program != "/usr/bin/jq" {
		t.Errorf("OtherProgram() = %q, %v, want /usr/bin/jq, true", program, ok)
	}
	if _, ok := KindCloudCLI.OtherProgram(); ok {
		t.Error("fixed kinds must not report an other program")
	}
}

func TestKind_SupportsFileArgs(t *testing.T) {
	t.Parallel()

	for _, k := range append(Kinds(), KindOther("az")) {
		want := k == KindCloudCLI
		if got := k.SupportsFileArgs(); got != want {
			t.Errorf("%s.SupportsFileArgs() = %v, want %v", k, got, want)
		}
	}
}
