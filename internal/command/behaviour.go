// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/importctl/importctl/pkg/platform"
	"github.com/importctl/importctl/pkg/types"
)

const (
	// RetryBehaviourRetry allows one automatic retry per failure class.
	RetryBehaviourRetry RetryBehaviour = "retry"
	// RetryBehaviourFail fails on the first non-zero exit.
	RetryBehaviourFail RetryBehaviour = "fail"

	// OutputBehaviourCapture pipes stdio so output can be inspected and cached.
	OutputBehaviourCapture OutputBehaviour = "capture"
	// OutputBehaviourDisplay inherits the parent's stdio and is never cached.
	OutputBehaviourDisplay OutputBehaviour = "display"

	// DefaultCacheValidity is the validity used by Builder.UseCacheDir.
	DefaultCacheValidity = 24 * time.Hour
)

var (
	// ErrInvalidRetryBehaviour is returned for an unknown RetryBehaviour.
	ErrInvalidRetryBehaviour = errors.New("invalid retry behaviour")
	// ErrInvalidOutputBehaviour is returned for an unknown OutputBehaviour.
	ErrInvalidOutputBehaviour = errors.New("invalid output behaviour")
	// ErrInvalidCachePath is returned when a cache path sanitizes to nothing.
	ErrInvalidCachePath = errors.New("invalid cache path")

	whitespaceRun = regexp.MustCompile(`\s+`)
)

type (
	// RetryBehaviour controls whether a failed invocation may be retried.
	RetryBehaviour string

	// OutputBehaviour controls how the child's stdio is wired.
	OutputBehaviour string

	// CacheBehaviour enables the on-disk output cache for an invocation.
	// A nil *CacheBehaviour means no caching.
	CacheBehaviour struct {
		// Path is the sanitized entry directory relative to the cache root.
		Path types.RelativePath
		// ValidFor bounds the age of a trusted entry. Zero disables lookups
		// and stores.
		ValidFor time.Duration
	}
)

// Validate returns an error if the RetryBehaviour is unknown.
func (r RetryBehaviour) Validate() error {
	switch r {
	case RetryBehaviourRetry, RetryBehaviourFail:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: retry, fail)", ErrInvalidRetryBehaviour, r)
	}
}

// Validate returns an error if the OutputBehaviour is unknown.
func (o OutputBehaviour) Validate() error {
	switch o {
	case OutputBehaviourCapture, OutputBehaviourDisplay:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: capture, display)", ErrInvalidOutputBehaviour, o)
	}
}

// NewCacheBehaviour sanitizes path and returns a cache behaviour for it.
// Whitespace runs become "_", and empty, "." and ".." segments are dropped so
// the entry always lives below the cache root. Segments that Windows reserves
// (con, nul, com1, ...) get a "_" prefix so cache trees stay portable.
func NewCacheBehaviour(path string, validFor time.Duration) (*CacheBehaviour, error) {
	sanitized := SanitizeCachePath(path)
	if sanitized == "" {
		return nil, fmt.Errorf("%w %q: nothing left after sanitizing", ErrInvalidCachePath, path)
	}
	if validFor < 0 {
		return nil, fmt.Errorf("%w %q: negative validity %s", ErrInvalidCachePath, path, validFor)
	}
	rel := types.RelativePath(sanitized)
	if err := rel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCachePath, err)
	}
	return &CacheBehaviour{Path: rel, ValidFor: validFor}, nil
}

// SanitizeCachePath returns the cleaned, relative, whitespace-free form of
// path, or "" when nothing usable remains.
func SanitizeCachePath(path string) string {
	path = whitespaceRun.ReplaceAllString(strings.TrimSpace(path), "_")
	path = strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")

	var segments []string
	for seg := range strings.SplitSeq(path, "/") {
		switch seg {
		case "", ".", "..":
			continue
		}
		if platform.IsWindowsReservedName(seg) {
			seg = "_" + seg
		}
		segments = append(segments, seg)
	}
	return filepath.Join(segments...)
}

// active reports whether lookups and stores happen for this behaviour.
func (c *CacheBehaviour) active() bool {
	return c != nil && c.ValidFor > 0
}

func (c *CacheBehaviour) clone() *CacheBehaviour {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
