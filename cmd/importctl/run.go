// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/importctl/importctl/internal/command"
	"github.com/importctl/importctl/internal/config"

	"github.com/spf13/cobra"
)

// ErrInvalidFlag is returned for malformed invocation flag values.
var ErrInvalidFlag = errors.New("invalid flag value")

// fileRef matches a positional argument that references a --file-arg.
var fileRef = regexp.MustCompile(`^\{file:([^}]+)\}$`)

// invocationFlags are the flags shared by run and summarize.
type invocationFlags struct {
	cacheDir  string
	validFor  time.Duration
	timeout   time.Duration
	display   bool
	noRetry   bool
	stdinFile string
	fileArgs  []string
	env       []string
	workdir   string
	announce  bool
	asJSON    bool
	shorten   bool
}

func newRunCommand(app *App) *cobra.Command {
	var flags invocationFlags

	runCmd := &cobra.Command{
		Use:   "run [flags] <kind> [args...]",
		Short: "Run an external command through the execution engine",
		Long: `Run an external command through the execution engine.

<kind> is one of cloud-cli, iac-cli, editor, echo, shell, vcs, or
other:<program>. Everything after the kind is passed to the program
unchanged, so importctl flags must come first.

File arguments (cloud-cli only) are declared with --file-arg name=local and
referenced by a positional '{file:name}' argument, which becomes '@<path>'.

` + SubtitleStyle.Render("Examples:") + `
  importctl run cloud-cli account show
  importctl run --cache-dir lookups/groups --valid-for 1h --json cloud-cli group list
  importctl run --file-arg q.kql=./query.kql cloud-cli graph query -q '{file:q.kql}'
  importctl run --display iac-cli plan`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvocation(cmd.Context(), app, cmd, &flags, args)
		},
	}
	runCmd.Flags().SetInterspersed(false)
	flags.register(runCmd, true)

	return runCmd
}

func newSummarizeCommand(app *App) *cobra.Command {
	var flags invocationFlags

	summarizeCmd := &cobra.Command{
		Use:               "summarize [flags] <kind> [args...]",
		Short:             "Print the invocation summary without running it",
		Long:              "Print the shell-like summary used in logs and as the cache context, without running anything.",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.engine(cmd.Context())
			if err != nil {
				return err
			}
			b, err := flags.build(e, app.stdin, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Summarize())
			return nil
		},
	}
	summarizeCmd.Flags().SetInterspersed(false)
	flags.register(summarizeCmd, false)

	return summarizeCmd
}

func (f *invocationFlags) register(cmd *cobra.Command, execution bool) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.fileArgs, "file-arg", nil, "file argument as name=local-file (repeatable, cloud-cli only)")
	if !execution {
		return
	}
	fs.StringVar(&f.cacheDir, "cache-dir", "", "cache captured output under this path relative to the cache root")
	fs.DurationVar(&f.validFor, "valid-for", 0, "how long a cached entry is trusted (default from config)")
	fs.DurationVar(&f.timeout, "timeout", 0, "kill the process after this long (0 disables)")
	fs.BoolVar(&f.display, "display", false, "show output on the terminal instead of capturing it")
	fs.BoolVar(&f.noRetry, "no-retry", false, "fail on the first non-zero exit")
	fs.StringVar(&f.stdinFile, "stdin-file", "", "send this file to the process's stdin ('-' for importctl's stdin)")
	fs.StringArrayVar(&f.env, "env", nil, "environment variable as KEY=VALUE (repeatable)")
	fs.StringVar(&f.workdir, "workdir", "", "working directory for the process")
	fs.BoolVar(&f.announce, "announce", false, "log the invocation at info level")
	fs.BoolVar(&f.asJSON, "json", false, "parse stdout as JSON and pretty-print it")
	fs.BoolVar(&f.shorten, "shorten", false, "truncate streams longer than 1000 lines")
}

// build turns the flags and positional arguments into a builder.
func (f *invocationFlags) build(e *command.Engine, stdin io.Reader, args []string) (*command.Builder, error) {
	kind, err := command.ParseKind(args[0])
	if err != nil {
		return nil, err
	}

	contents, err := readFileArgs(f.fileArgs)
	if err != nil {
		return nil, err
	}

	b := e.New(kind)
	for _, arg := range args[1:] {
		m := fileRef.FindStringSubmatch(arg)
		if m == nil {
			b.Arg(arg)
			continue
		}
		content, ok := contents[m[1]]
		if !ok {
			return nil, fmt.Errorf("%w: %s references an undeclared file argument (add --file-arg %s=<file>)", ErrInvalidFlag, arg, m[1])
		}
		b.FileArg(m[1], content)
		delete(contents, m[1])
	}
	if len(contents) > 0 {
		name := slices.Sorted(maps.Keys(contents))[0]
		return nil, fmt.Errorf("%w: --file-arg %s is never referenced (add a '{file:%s}' argument)", ErrInvalidFlag, name, name)
	}

	for _, kv := range f.env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --env %q must be KEY=VALUE", ErrInvalidFlag, kv)
		}
		b.Env(key, value)
	}

	if f.cacheDir != "" {
		if f.validFor > 0 {
			cb, err := command.NewCacheBehaviour(f.cacheDir, f.validFor)
			if err != nil {
				return nil, err
			}
			b.UseCacheBehaviour(cb)
		} else {
			b.UseCacheDir(f.cacheDir)
		}
	}
	if f.display {
		b.UseOutputBehaviour(command.OutputBehaviourDisplay)
	}
	if f.noRetry {
		b.UseRetryBehaviour(command.RetryBehaviourFail)
	}
	if f.stdinFile != "" {
		content, err := readStdinFile(f.stdinFile, stdin)
		if err != nil {
			return nil, err
		}
		b.SendStdin(content)
	}

	b.UseRunDir(f.workdir).UseTimeout(f.timeout).ShouldAnnounce(f.announce)
	return b, b.Err()
}

func readFileArgs(pairs []string) (map[string]string, error) {
	contents := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, local, ok := strings.Cut(pair, "=")
		if !ok || name == "" || local == "" {
			return nil, fmt.Errorf("%w: --file-arg %q must be name=local-file", ErrInvalidFlag, pair)
		}
		data, err := os.ReadFile(local)
		if err != nil {
			return nil, fmt.Errorf("read file argument %s: %w", name, err)
		}
		contents[name] = string(data)
	}
	return contents, nil
}

func readStdinFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read stdin file: %w", err)
	}
	return string(data), nil
}

func runInvocation(ctx context.Context, app *App, cmd *cobra.Command, flags *invocationFlags, args []string) error {
	e, cfg, err := app.engine(ctx)
	if err != nil {
		return app.fail(err, glamourStyle(nil))
	}
	style := glamourStyle(cfg)

	b, err := flags.build(e, app.stdin, args)
	if err != nil {
		return app.fail(err, style)
	}

	if flags.asJSON {
		v, err := command.Run[any](ctx, b)
		if err != nil {
			return app.fail(err, style)
		}
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("format output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	}

	out, err := b.RunRaw(ctx)
	if err != nil {
		return app.fail(err, style)
	}
	if flags.shorten {
		out = out.Shorten()
	}
	if _, err := cmd.OutOrStdout().Write(out.Stdout); err != nil {
		return err
	}
	_, err = cmd.ErrOrStderr().Write(out.Stderr)
	return err
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil || cfg.UI.ColorScheme == "" {
		return string(config.ColorSchemeAuto)
	}
	return string(cfg.UI.ColorScheme)
}

func completeKinds(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	kinds := command.Kinds()
	names := make([]string, 0, len(kinds)+1)
	for _, k := range kinds {
		names = append(names, k.String())
	}
	names = append(names, "other:")
	return names, cobra.ShellCompDirectiveNoSpace
}
