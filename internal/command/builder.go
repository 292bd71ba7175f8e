// SPDX-License-Identifier: MPL-2.0

package command

import (
	"maps"
	"slices"
	"time"

	"github.com/importctl/importctl/pkg/types"
)

// Builder accumulates one invocation. Methods chain and record the first
// configuration error, which Err and every run method report.
//
// A Builder is not safe for concurrent mutation. Clone it to share a base
// configuration across goroutines.
type Builder struct {
	engine *Engine

	kind     Kind
	args     []string
	fileArgs map[int]FileArg
	env      map[string]string
	runDir   string
	retry    RetryBehaviour
	output   OutputBehaviour
	cache    *CacheBehaviour
	announce bool
	timeout  time.Duration
	stdin    *string

	err error
}

func newBuilder(e *Engine, kind Kind) *Builder {
	b := &Builder{
		engine:   e,
		kind:     kind,
		fileArgs: make(map[int]FileArg),
		env:      make(map[string]string),
		retry:    RetryBehaviourRetry,
		output:   OutputBehaviourCapture,
	}
	if err := kind.Validate(); err != nil {
		b.setErr(err)
	}
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first configuration error recorded on the builder.
func (b *Builder) Err() error { return b.err }

// Kind returns the command kind.
func (b *Builder) Kind() Kind { return b.kind }

// UseKind changes the command kind.
func (b *Builder) UseKind(kind Kind) *Builder {
	if err := kind.Validate(); err != nil {
		b.setErr(err)
		return b
	}
	if len(b.fileArgs) > 0 && !kind.SupportsFileArgs() {
		fa := b.fileArgs[sortedFileArgIndexes(b.fileArgs)[0]]
		b.setErr(&FileArgKindError{Kind: kind, Path: fa.Path})
	}
	b.kind = kind
	return b
}

// Arg appends one argument.
func (b *Builder) Arg(arg string) *Builder {
	b.args = append(b.args, arg)
	return b
}

// Args appends arguments in order.
func (b *Builder) Args(args ...string) *Builder {
	b.args = append(b.args, args...)
	return b
}

// FileArg appends an argument whose content is written to path before the
// program runs and passed as "@<absolute path>". Only KindCloudCLI accepts
// file arguments.
func (b *Builder) FileArg(path, content string) *Builder {
	fa := FileArg{Path: types.RelativePath(path), Content: content}
	if !b.kind.SupportsFileArgs() {
		b.setErr(&FileArgKindError{Kind: b.kind, Path: fa.Path})
		return b
	}
	if err := fa.Validate(); err != nil {
		b.setErr(err)
		return b
	}
	b.fileArgs[len(b.args)] = fa
	b.args = append(b.args, fa.placeholder())
	return b
}

// Env sets an environment variable for the process, on top of the inherited
// environment.
func (b *Builder) Env(key, value string) *Builder {
	b.env[key] = value
	return b
}

// UseRunDir sets the working directory. Empty inherits the current one.
func (b *Builder) UseRunDir(dir string) *Builder {
	b.runDir = dir
	return b
}

// UseRetryBehaviour sets whether transient failures are retried.
func (b *Builder) UseRetryBehaviour(r RetryBehaviour) *Builder {
	if err := r.Validate(); err != nil {
		b.setErr(err)
		return b
	}
	b.retry = r
	return b
}

// UseOutputBehaviour sets whether stdio is captured or displayed.
func (b *Builder) UseOutputBehaviour(o OutputBehaviour) *Builder {
	if err := o.Validate(); err != nil {
		b.setErr(err)
		return b
	}
	b.output = o
	return b
}

// UseCacheBehaviour sets the cache behaviour. Nil disables caching.
func (b *Builder) UseCacheBehaviour(c *CacheBehaviour) *Builder {
	if c == nil {
		b.cache = nil
		return b
	}
	// Literal behaviours bypass NewCacheBehaviour, so sanitize them here.
	cb, err := NewCacheBehaviour(string(c.Path), c.ValidFor)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.cache = cb
	return b
}

// UseCacheDir caches under path with the engine's default validity.
func (b *Builder) UseCacheDir(path string) *Builder {
	validity := DefaultCacheValidity
	if b.engine != nil {
		validity = b.engine.defaultValidity
	}
	cb, err := NewCacheBehaviour(path, validity)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.cache = cb
	return b
}

// UseTimeout kills the process after d. Zero means no timeout.
func (b *Builder) UseTimeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// ShouldAnnounce logs the invocation at info level instead of debug.
func (b *Builder) ShouldAnnounce(announce bool) *Builder {
	b.announce = announce
	return b
}

// SendStdin writes content to the process's stdin and then closes it. In
// display mode it replaces the inherited terminal input.
func (b *Builder) SendStdin(content string) *Builder {
	b.stdin = &content
	return b
}

// CacheEntryDir returns the cache entry directory, if caching is configured.
func (b *Builder) CacheEntryDir() (string, bool) {
	if b.cache == nil || b.engine == nil {
		return "", false
	}
	return b.cache.Path.Under(b.engine.cacheRoot), true
}

// Bust marks the cache entry stale so the next run misses.
func (b *Builder) Bust() error {
	if b.err != nil {
		return b.err
	}
	dir, ok := b.CacheEntryDir()
	if !ok {
		return ErrCacheNotConfigured
	}
	return bustCache(dir)
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	cp := *b
	cp.args = slices.Clone(b.args)
	cp.fileArgs = maps.Clone(b.fileArgs)
	cp.env = maps.Clone(b.env)
	cp.cache = b.cache.clone()
	if b.stdin != nil {
		s := *b.stdin
		cp.stdin = &s
	}
	return &cp
}
