// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/importctl/importctl/internal/command"
	"github.com/importctl/importctl/internal/config"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and builds
	// its engine through it.
	App struct {
		Config    ConfigProvider
		LoginLock *command.LoginLock
		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		LoginLock *command.LoginLock
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// globalFlags are the persistent root flags.
	globalFlags struct {
		verbose    bool
		configFile string
		cacheRoot  string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.LoginLock == nil {
		deps.LoginLock = command.DefaultLoginLock()
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Config:    deps.Config,
		LoginLock: deps.LoginLock,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig loads configuration honoring --config and --cache-root.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configFile})
	if err != nil {
		return nil, err
	}
	if a.flags.cacheRoot != "" {
		cfg.Cache.Root = config.CacheDirPath(a.flags.cacheRoot)
	}
	return cfg, nil
}

// engine builds the execution engine for one CLI invocation. Display-mode
// commands inherit the App's streams.
func (a *App) engine(ctx context.Context) (*command.Engine, *config.Config, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	e, err := command.FromConfig(cfg, command.EngineOptions{
		LoginLock: a.LoginLock,
		Stdin:     a.stdin,
		Stdout:    a.stdout,
		Stderr:    a.stderr,
	})
	if err != nil {
		return nil, nil, err
	}
	return e, cfg, nil
}
