// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/importctl/importctl/internal/config"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// Config dump formats.
const (
	formatCUE  = "cue"
	formatTOML = "toml"
	formatJSON = "json"
)

// newConfigCommand creates the `importctl config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage importctl configuration",
		Long: `Manage importctl configuration.

Configuration is stored in:
  - Linux: ~/.config/importctl/config.cue
  - macOS: ~/Library/Application Support/importctl/config.cue
  - Windows: %APPDATA%\importctl\config.cue

Every key can be overridden with an IMPORTCTL_* environment variable,
for example IMPORTCTL_EXECUTABLES_CLOUD_CLI or IMPORTCTL_LOG_LEVEL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err, glamourStyle(nil))
			}
			return showConfig(cmd.OutOrStdout(), app, cfg)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  "Create the default configuration file. An existing file is kept unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if force {
				if err := config.Save(config.DefaultConfig()); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
			}
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file with the defaults")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.flags.configFile
			if path == "" {
				var err error
				if path, err = config.ConfigFilePath(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			return dumpConfig(cmd.OutOrStdout(), cfg, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", formatCUE, "output format: cue, toml or json")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(w io.Writer, app *App, cfg *config.Config) error {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path := app.flags.configFile
	if path == "" {
		path, _ = config.ConfigFilePath()
	}
	if path != "" && fileExistsCheck(path) {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	cacheRoot, err := config.CacheDir(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Cache root"), cacheRoot)

	exe := cfg.Executables
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("executables"))
	for _, kv := range [][2]string{
		{"cloud_cli", string(exe.CloudCLI)},
		{"iac_cli", string(exe.IaCCLI)},
		{"iac_cli_alt", string(exe.IaCCLIAlt)},
		{"editor", string(exe.Editor)},
		{"vcs", string(exe.VCS)},
		{"shell", string(exe.Shell)},
		{"echo", string(exe.Echo)},
	} {
		fmt.Fprintf(w, "  %s: %s\n", kv[0], valueStyle.Render(kv[1]))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("cache"))
	fmt.Fprintf(w, "  default_valid_for: %s\n", valueStyle.Render(cfg.Cache.DefaultValidFor.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func dumpConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case formatCUE:
		_, err := io.WriteString(w, config.GenerateCUE(cfg))
		return err
	case formatTOML:
		data, err := toml.Marshal(configDocument(cfg))
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case formatJSON:
		data, err := json.MarshalIndent(configDocument(cfg), "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("%w: --format %q (valid: cue, toml, json)", ErrInvalidFlag, format)
	}
}

// configDocument is cfg keyed like the CUE file, with durations as strings.
func configDocument(cfg *config.Config) map[string]any {
	exe := cfg.Executables
	return map[string]any{
		"executables": map[string]any{
			"cloud_cli":   string(exe.CloudCLI),
			"iac_cli":     string(exe.IaCCLI),
			"iac_cli_alt": string(exe.IaCCLIAlt),
			"editor":      string(exe.Editor),
			"vcs":         string(exe.VCS),
			"shell":       string(exe.Shell),
			"echo":        string(exe.Echo),
		},
		"cache": map[string]any{
			"root":              string(cfg.Cache.Root),
			"default_valid_for": cfg.Cache.DefaultValidFor.String(),
		},
		"log": map[string]any{
			"level": string(cfg.Log.Level),
		},
		"ui": map[string]any{
			"color_scheme": string(cfg.UI.ColorScheme),
			"verbose":      cfg.UI.Verbose,
		},
	}
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
