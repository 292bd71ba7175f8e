// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "bust cache"},
			expected: "failed to bust cache",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "run command",
				Resource:  "az account show --debug",
			},
			expected: "failed to run command: az account show --debug",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "run command",
				Resource:  "terraform plan",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to run command: terraform plan: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	wrapped := &ActionableError{Operation: "run command", Cause: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	if (&ActionableError{Operation: "run command"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions are bulleted",
			err: &ActionableError{
				Operation:   "run command",
				Resource:    "az group list --debug",
				Suggestions: []string{"Run 'importctl login'", "Check the subscription"},
			},
			contains: []string{
				"failed to run command",
				"• Run 'importctl login'",
				"• Check the subscription",
			},
		},
		{
			name: "no error chain in non-verbose",
			err: &ActionableError{
				Operation: "load configuration",
				Cause:     errors.New("syntax error"),
			},
			contains: []string{"failed to load configuration: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested error chain verbose",
			err: &ActionableError{
				Operation: "run command",
				Cause: &ActionableError{
					Operation: "materialize file argument",
					Cause:     errors.New("permission denied"),
				},
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. failed to materialize file argument: permission denied",
				"2. permission denied",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestActionableError_Issue(t *testing.T) {
	t.Parallel()

	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() should be nil when no IssueID is set")
	}

	err := NewErrorContext().
		WithOperation("run command").
		WithIssue(RateLimitedId).
		Build()
	if got := err.Issue(); got == nil || got.Id() != RateLimitedId {
		t.Errorf("Issue() = %v, want RateLimited issue", got)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("some/path").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("parse error")
	err := NewErrorContext().
		WithOperation("load configuration").
		WithResource("/etc/importctl/config.cue").
		WithSuggestion("Check syntax").
		WithSuggestions("Verify permissions", "Run 'importctl config init'").
		WithIssue(ConfigLoadFailedId).
		Wrap(cause).
		Build()

	if err.Operation != "load configuration" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if err.Resource != "/etc/importctl/config.cue" {
		t.Errorf("Resource = %q", err.Resource)
	}
	if len(err.Suggestions) != 3 {
		t.Errorf("Suggestions count = %d, want 3", len(err.Suggestions))
	}
	if err.IssueID != ConfigLoadFailedId {
		t.Errorf("IssueID = %d", err.IssueID)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Cause = %v", err.Cause)
	}

	var ae *ActionableError
	if !errors.As(NewErrorContext().WithOperation("x").BuildError(), &ae) {
		t.Error("BuildError() should return *ActionableError")
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	cause := errors.New("original error")
	err := WrapWithOperation(cause, "bust cache")
	if err == nil || err.Operation != "bust cache" || !errors.Is(err, cause) {
		t.Fatalf("WrapWithOperation() = %+v", err)
	}

	if WrapWithOperation(nil, "bust cache") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
}
