// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/importctl/importctl/internal/command"
	"github.com/importctl/importctl/internal/issue"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. The styled message and the issue help are printed before
// the error itself.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints any styled message first, then the optional
// issue help section rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// issueFor picks the catalog entry explaining err.
func issueFor(err error) issue.Id {
	var procErr *command.ProcessError
	if errors.As(err, &procErr) {
		switch procErr.Class {
		case command.FailureRateLimited:
			return issue.RateLimitedId
		case command.FailureCredentialExpired:
			return issue.CredentialsExpiredId
		default:
			return issue.CommandFailedId
		}
	}

	switch {
	case errors.Is(err, command.ErrTimeout):
		return issue.CommandTimedOutId
	case errors.Is(err, command.ErrSpawn):
		return issue.ExecutableNotFoundId
	case errors.Is(err, command.ErrFileArgNotSupported):
		return issue.FileArgNotSupportedId
	case errors.Is(err, command.ErrCacheNotConfigured):
		return issue.CacheNotConfiguredId
	case errors.Is(err, command.ErrDeserialize):
		return issue.OutputParseFailedId
	case errors.Is(err, command.ErrValidation):
		return issue.OutputValidationFailedId
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.IssueID
	}
	return 0
}

// failureCard renders the summary and dump location of a failed invocation,
// or "" when err carries neither.
func failureCard(err error) string {
	var (
		summary, dumpDir string
		procErr          *command.ProcessError
		decodeErr        *command.DeserializeError
		valErr           *command.ValidationError
	)
	switch {
	case errors.As(err, &procErr):
		summary, dumpDir = procErr.Summary, procErr.DumpDir
	case errors.As(err, &decodeErr):
		summary, dumpDir = decodeErr.Summary, decodeErr.DumpDir
	case errors.As(err, &valErr):
		summary, dumpDir = valErr.Summary, valErr.DumpDir
	default:
		return ""
	}

	var sb strings.Builder
	sb.WriteString(renderHeaderStyle.Render("✗ Command failed"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", renderLabelStyle.Render("Command:"), CmdStyle.Render(summary))
	if dumpDir != "" {
		fmt.Fprintf(&sb, "%s %s\n", renderLabelStyle.Render("Failure dump:"), renderValueStyle.Render(dumpDir))
	}
	return sb.String()
}

// fail renders err for the terminal and converts it into an ExitError.
func (a *App) fail(err error, style string) error {
	if err == nil {
		return nil
	}
	svcErr := newServiceError(err, issueFor(err), failureCard(err))
	renderServiceError(a.stderr, svcErr, style)
	return &ExitError{Code: exitCodeFor(err), Err: svcErr}
}
