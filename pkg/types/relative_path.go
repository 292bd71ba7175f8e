// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidRelativePath is the sentinel error wrapped by InvalidRelativePathError.
var ErrInvalidRelativePath = errors.New("invalid relative path")

type (
	// RelativePath is a slash- or OS-separated path that is joined under a
	// directory owned by the caller (a cache entry, a failure dump, a temp dir).
	// A valid path is non-empty, not absolute, and never climbs out of the
	// directory it is joined to.
	RelativePath string

	// InvalidRelativePathError is returned when a RelativePath is empty,
	// absolute, or escapes its base directory.
	InvalidRelativePathError struct {
		Value  RelativePath
		Reason string
	}
)

// String returns the string representation of the RelativePath.
func (p RelativePath) String() string { return string(p) }

// Validate returns an error if the RelativePath cannot be safely joined under
// a base directory.
func (p RelativePath) Validate() error {
	raw := string(p)
	if strings.TrimSpace(raw) == "" {
		return &InvalidRelativePathError{Value: p, Reason: "must be non-empty"}
	}
	if filepath.IsAbs(raw) || strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, `\`) {
		return &InvalidRelativePathError{Value: p, Reason: "must not be absolute"}
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(raw)))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return &InvalidRelativePathError{Value: p, Reason: "must stay inside its base directory"}
	}
	return nil
}

// Under joins the path under base after cleaning it.
func (p RelativePath) Under(base string) string {
	return filepath.Join(base, filepath.Clean(filepath.FromSlash(string(p))))
}

// Error implements the error interface for InvalidRelativePathError.
func (e *InvalidRelativePathError) Error() string {
	return fmt.Sprintf("invalid relative path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidRelativePath for errors.Is() compatibility.
func (e *InvalidRelativePathError) Unwrap() error { return ErrInvalidRelativePath }
