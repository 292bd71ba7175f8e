// SPDX-License-Identifier: MPL-2.0

package command

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/importctl/importctl/internal/config"
	"github.com/importctl/importctl/pkg/platform"
)

// EnvUseTofu selects the alternate IaC executable when set to a true value
// (any strconv.ParseBool spelling).
const EnvUseTofu = "IMPORTCTL_USE_TOFU"

type (
	// Program is a resolved executable.
	Program struct {
		// Name is the configured executable; it heads the invocation summary.
		Name string
		// Path is what is actually executed.
		Path string
		// PrefixArgs precede the invocation arguments.
		PrefixArgs []string
	}

	// Resolver maps a Kind to the program that runs it.
	Resolver interface {
		Resolve(kind Kind) (Program, error)
	}

	// ConfigResolver resolves kinds from the executables configuration.
	ConfigResolver struct {
		executables config.ExecutablesConfig
		goos        string
		getenv      func(string) string
		sandbox     platform.SandboxType
		sandboxSet  bool
	}

	// ResolverOption customizes a ConfigResolver.
	ResolverOption func(*ConfigResolver)
)

// WithGOOS overrides runtime.GOOS.
func WithGOOS(goos string) ResolverOption {
	return func(r *ConfigResolver) { r.goos = goos }
}

// WithGetenv overrides os.Getenv for the IaC toggle.
func WithGetenv(getenv func(string) string) ResolverOption {
	return func(r *ConfigResolver) { r.getenv = getenv }
}

// WithSandbox overrides sandbox detection.
func WithSandbox(st platform.SandboxType) ResolverOption {
	return func(r *ConfigResolver) {
		r.sandbox = st
		r.sandboxSet = true
	}
}

// NewResolver creates a resolver over the configured executables.
func NewResolver(executables config.ExecutablesConfig, opts ...ResolverOption) *ConfigResolver {
	r := &ConfigResolver{
		executables: executables,
		goos:        runtime.GOOS,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.sandboxSet {
		r.sandbox = platform.DetectSandbox()
	}
	return r
}

// Resolve returns the program for kind.
func (r *ConfigResolver) Resolve(kind Kind) (Program, error) {
	if err := kind.Validate(); err != nil {
		return Program{}, err
	}

	var name string
	switch kind {
	case KindCloudCLI:
		name = string(r.executables.CloudCLI)
	case KindIaCCLI:
		name = string(r.executables.IaCCLI)
		if r.useTofu() {
			name = string(r.executables.IaCCLIAlt)
		}
	case KindEditor:
		name = string(r.executables.Editor)
	case KindVCS:
		name = string(r.executables.VCS)
	case KindShell:
		name = string(r.executables.Shell)
	case KindEcho:
		name = string(r.executables.Echo)
		// echo is a cmd.exe builtin, not a program.
		if r.goos == platform.Windows && name == "echo" {
			return Program{Name: name, Path: "cmd", PrefixArgs: []string{"/C", "echo"}}, nil
		}
	default:
		name, _ = kind.OtherProgram()
	}

	if strings.TrimSpace(name) == "" {
		return Program{}, &InvalidKindError{Value: kind}
	}

	path, prefix := platform.HostCommand(r.sandbox, name)
	return Program{Name: name, Path: path, PrefixArgs: prefix}, nil
}

func (r *ConfigResolver) useTofu() bool {
	raw := strings.TrimSpace(r.getenv(EnvUseTofu))
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Debug("ignoring unparsable IaC toggle", "env", EnvUseTofu, "value", raw)
		return false
	}
	return v
}

// argv returns the full argument vector after Path.
func (p Program) argv(args []string) []string {
	out := make([]string, 0, len(p.PrefixArgs)+len(args))
	out = append(out, p.PrefixArgs...)
	return append(out, args...)
}
