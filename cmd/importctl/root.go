// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/importctl/importctl/internal/issue"
	"github.com/importctl/importctl/internal/logging"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importctl",
		Short: "Run cloud and IaC tooling with caching, retries and failure dumps",
		Long: TitleStyle.Render("importctl") + SubtitleStyle.Render(" - run cloud and IaC tooling reliably") + `

importctl runs external programs (the cloud CLI, the IaC CLI, an editor,
a shell, version control) on behalf of import workflows. Captured output
can be cached on disk, transient cloud failures are retried once, and
every unrecoverable failure leaves a dump directory behind.

` + SubtitleStyle.Render("Examples:") + `
  importctl run cloud-cli account show
  importctl run --cache-dir lookups/groups --valid-for 1h cloud-cli group list
  importctl cache bust lookups/groups
  importctl login
  importctl config show`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(cmd.Context(), app)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/importctl/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.cacheRoot, "cache-root", "", "override the cache root directory")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newSummarizeCommand(app))
	rootCmd.AddCommand(newCacheCommand(app))
	rootCmd.AddCommand(newLoginCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())

	return rootCmd
}

// configureLogging installs the process logger. A configuration that fails
// to load is reported and logging falls back to defaults; commands that
// need the configuration report the error again.
func configureLogging(ctx context.Context, app *App) {
	opts := logging.Options{Profile: logging.ProfileRuntime, Writer: app.stderr}

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, app.flags.verbose))
	} else {
		opts.Level = string(cfg.Log.Level)
		if !app.flags.verbose {
			app.flags.verbose = cfg.UI.Verbose
		}
	}
	opts.Verbose = app.flags.verbose

	logging.Configure(opts)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the root command and runs it. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
