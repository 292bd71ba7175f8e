// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/importctl/importctl/internal/clock"
	"github.com/importctl/importctl/internal/config"
)

// RateLimitBackoff is the fixed pause before retrying a rate-limited invocation.
const RateLimitBackoff = 30 * time.Second

// ErrNoCacheRoot is returned by NewEngine when no cache root can be determined.
var ErrNoCacheRoot = errors.New("no cache root")

type (
	// EngineOptions configures an Engine. Zero values get defaults.
	EngineOptions struct {
		// Resolver maps kinds to programs. Defaults to the default executables.
		Resolver Resolver
		// CacheRoot is the directory cache entries are namespaced under.
		// Defaults to config.CacheDir.
		CacheRoot string
		// FailureRoot holds failure dumps of invocations without a cache path.
		// Defaults to CacheRoot.
		FailureRoot string
		// TempDir holds per-invocation file arguments when caching is off.
		// Defaults to os.TempDir.
		TempDir string
		// DefaultValidity is the validity used by Builder.UseCacheDir.
		// Defaults to DefaultCacheValidity.
		DefaultValidity time.Duration
		// Clock drives cache timestamps and the rate-limit backoff.
		Clock clock.Clock
		// LoginLock serializes re-authentication. Defaults to DefaultLoginLock().
		LoginLock *LoginLock
		// LoginCommand builds the re-authentication sub-invocation.
		// Defaults to DefaultLoginCommand.
		LoginCommand func(*Engine) *Builder
		// Stdin, Stdout and Stderr are inherited by display-mode invocations.
		// Default to the process's standard streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Engine holds the collaborators shared by every invocation it builds.
	Engine struct {
		resolver        Resolver
		cacheRoot       string
		failureRoot     string
		tempDir         string
		defaultValidity time.Duration
		clock           clock.Clock
		loginLock       *LoginLock
		loginCommand    func(*Engine) *Builder
		terminal        stdio
	}
)

var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	cfg, err := config.Cached(context.Background())
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, EngineOptions{})
})

// Default returns the process-wide engine built from the cached configuration.
func Default() (*Engine, error) {
	return defaultEngine()
}

// New starts a builder on the default engine. A failure to build the
// default engine is reported by every invocation method and by Err.
func New(kind Kind) *Builder {
	e, err := Default()
	if err != nil {
		b := newBuilder(nil, kind)
		b.setErr(fmt.Errorf("initialize command engine: %w", err))
		return b
	}
	return e.New(kind)
}

// FromConfig builds an engine from the loaded configuration. Resolver,
// CacheRoot and DefaultValidity in opts are filled from cfg when unset.
func FromConfig(cfg *config.Config, opts EngineOptions) (*Engine, error) {
	if opts.Resolver == nil {
		opts.Resolver = NewResolver(cfg.Executables)
	}
	if opts.CacheRoot == "" {
		root, err := config.CacheDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoCacheRoot, err)
		}
		opts.CacheRoot = root
	}
	if opts.DefaultValidity == 0 {
		opts.DefaultValidity = cfg.Cache.DefaultValidFor
	}
	return NewEngine(opts)
}

// NewEngine creates an engine, filling defaults for unset options.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.CacheRoot == "" {
		root, err := config.CacheDir(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoCacheRoot, err)
		}
		opts.CacheRoot = root
	}
	if opts.FailureRoot == "" {
		opts.FailureRoot = opts.CacheRoot
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver(config.DefaultConfig().Executables)
	}
	if opts.DefaultValidity <= 0 {
		opts.DefaultValidity = DefaultCacheValidity
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.LoginLock == nil {
		opts.LoginLock = DefaultLoginLock()
	}
	if opts.LoginCommand == nil {
		opts.LoginCommand = DefaultLoginCommand
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Engine{
		resolver:        opts.Resolver,
		cacheRoot:       opts.CacheRoot,
		failureRoot:     opts.FailureRoot,
		tempDir:         opts.TempDir,
		defaultValidity: opts.DefaultValidity,
		clock:           opts.Clock,
		loginLock:       opts.LoginLock,
		loginCommand:    opts.LoginCommand,
		terminal:        stdio{in: opts.Stdin, out: opts.Stdout, err: opts.Stderr},
	}, nil
}

// DefaultLoginCommand is "<cloud-cli> login", displayed to the user, never
// retried and always announced.
func DefaultLoginCommand(e *Engine) *Builder {
	return e.New(KindCloudCLI).
		Arg("login").
		UseOutputBehaviour(OutputBehaviourDisplay).
		UseRetryBehaviour(RetryBehaviourFail).
		ShouldAnnounce(true)
}

// New starts a builder for kind with retry and capture behaviour.
func (e *Engine) New(kind Kind) *Builder {
	return newBuilder(e, kind)
}

// Login runs the login command under the login lock.
func (e *Engine) Login(ctx context.Context) error {
	if err := e.loginLock.Acquire(ctx); err != nil {
		return fmt.Errorf("wait for login: %w", err)
	}
	defer e.loginLock.Release()

	if _, err := e.loginBuilder().RunRaw(ctx); err != nil {
		return err
	}
	e.loginLock.markLoggedIn()
	return nil
}

// loginBuilder builds the login sub-invocation. It never retries: a retry
// would re-enter reauthentication while the login lock is held.
func (e *Engine) loginBuilder() *Builder {
	return e.loginCommand(e).UseRetryBehaviour(RetryBehaviourFail)
}

// CacheRoot returns the directory cache entries live under.
func (e *Engine) CacheRoot() string { return e.cacheRoot }

// CacheEntryDir returns the sanitized entry directory for a cache path.
func (e *Engine) CacheEntryDir(path string) (string, error) {
	cb, err := NewCacheBehaviour(path, e.defaultValidity)
	if err != nil {
		return "", err
	}
	return cb.Path.Under(e.cacheRoot), nil
}

// Bust writes the invalidation marker for a cache path without building a command.
func (e *Engine) Bust(path string) (string, error) {
	dir, err := e.CacheEntryDir(path)
	if err != nil {
		return "", err
	}
	return dir, bustCache(dir)
}
