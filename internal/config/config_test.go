// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/importctl/importctl/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadWithPath(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadWithPath() error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}

	want := DefaultConfig()
	if cfg.Executables != want.Executables {
		t.Errorf("Executables = %+v, want %+v", cfg.Executables, want.Executables)
	}
	if cfg.Cache.DefaultValidFor != DefaultValidFor {
		t.Errorf("Cache.DefaultValidFor = %v, want %v", cfg.Cache.DefaultValidFor, DefaultValidFor)
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, LogLevelInfo)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `
executables: {
	cloud_cli: "/opt/az/bin/az"
	iac_cli:   "terraform1.9"
}
cache: {
	root:              "/var/cache/importctl"
	default_valid_for: "90m"
}
log: level: "debug"
ui: verbose: true
`)

	cfg, path, err := LoadWithPath(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadWithPath() error: %v", err)
	}
	if path != cfgPath {
		t.Errorf("resolved path = %q, want %q", path, cfgPath)
	}
	if cfg.Executables.CloudCLI != "/opt/az/bin/az" {
		t.Errorf("CloudCLI = %q", cfg.Executables.CloudCLI)
	}
	if cfg.Executables.IaCCLI != "terraform1.9" {
		t.Errorf("IaCCLI = %q", cfg.Executables.IaCCLI)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Executables.VCS != "git" {
		t.Errorf("VCS = %q, want default git", cfg.Executables.VCS)
	}
	if cfg.Cache.Root != "/var/cache/importctl" {
		t.Errorf("Cache.Root = %q", cfg.Cache.Root)
	}
	if cfg.Cache.DefaultValidFor != 90*time.Minute {
		t.Errorf("Cache.DefaultValidFor = %v, want 90m", cfg.Cache.DefaultValidFor)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"unknown top-level key", `container_engine: "podman"`, "container_engine"},
		{"empty executable", `executables: cloud_cli: ""`, "executables.cloud_cli"},
		{"unknown log level", `log: level: "trace"`, "log.level"},
		{"malformed duration", `cache: default_valid_for: "one day"`, "cache.default_valid_for"},
		{"wrong type", `ui: verbose: "yes"`, "ui.verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error type = %T, want *issue.ActionableError", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("Load() expected error for missing explicit file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %q", err)
	}
}

func TestLoad_ExplicitFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `executables: vcs: "git-from-dir"`)
	explicit := filepath.Join(t.TempDir(), "custom.cue")
	if err := os.WriteFile(explicit, []byte(`executables: vcs: "git-explicit"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigFilePath: explicit, ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Executables.VCS != "git-explicit" {
		t.Errorf("VCS = %q, want git-explicit", cfg.Executables.VCS)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); err == nil {
		t.Fatal("Load() expected error for canceled context")
	}
}

//nolint:paralleltest // mutates process environment
func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `executables: cloud_cli: "az-from-file"`)

	t.Setenv("IMPORTCTL_EXECUTABLES_CLOUD_CLI", "az-from-env")
	t.Setenv("IMPORTCTL_LOG_LEVEL", "warn")
	t.Setenv("IMPORTCTL_CACHE_DEFAULT_VALID_FOR", "5s")

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Executables.CloudCLI != "az-from-env" {
		t.Errorf("CloudCLI = %q, want az-from-env", cfg.Executables.CloudCLI)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Cache.DefaultValidFor != 5*time.Second {
		t.Errorf("DefaultValidFor = %v, want 5s", cfg.Cache.DefaultValidFor)
	}
}

//nolint:paralleltest // mutates process environment
func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	t.Setenv("IMPORTCTL_LOG_LEVEL", "chatty")

	_, err := NewProvider().Load(t.Context(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

//nolint:paralleltest // mutates package-level overrides
func TestCached_LoadsOnce(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	writeConfig(t, dir, `executables: editor: "vim"`)
	first, err := Cached(t.Context())
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	// Changes on disk are not observed after the first load.
	writeConfig(t, dir, `executables: editor: "emacs"`)
	second, err := Cached(t.Context())
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if first != second {
		t.Error("Cached() returned a different instance on second call")
	}
	if second.Executables.Editor != "vim" {
		t.Errorf("Editor = %q, want vim", second.Executables.Editor)
	}

	Reset()
	SetConfigDirOverride(dir)
	third, err := Cached(t.Context())
	if err != nil {
		t.Fatalf("Cached() after Reset error: %v", err)
	}
	if third.Executables.Editor != "emacs" {
		t.Errorf("Editor after Reset = %q, want emacs", third.Executables.Editor)
	}
}

//nolint:paralleltest // mutates package-level overrides
func TestCacheDir(t *testing.T) {
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.Cache.Root = "/srv/cache/../cache/importctl"
	got, err := CacheDir(cfg)
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	if got != filepath.Clean("/srv/cache/importctl") {
		t.Errorf("CacheDir() = %q", got)
	}

	override := t.TempDir()
	SetCacheDirOverride(override)
	got, err = CacheDir(cfg)
	if err != nil {
		t.Fatalf("CacheDir() error: %v", err)
	}
	if got != override {
		t.Errorf("CacheDir() with override = %q, want %q", got, override)
	}
}

//nolint:paralleltest // mutates package-level overrides
func TestCreateDefaultConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("config path %q not under %q", path, dir)
	}

	cfg, err := NewProvider().Load(t.Context(), LoadOptions{})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Executables != DefaultConfig().Executables {
		t.Errorf("round-tripped Executables = %+v", cfg.Executables)
	}

	// A second call leaves the existing file alone.
	custom := DefaultConfig()
	custom.Executables.Editor = "nano"
	if err := Save(custom); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nano"`) {
		t.Error("CreateDefaultConfig() overwrote an existing config file")
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cache.Root = "/tmp/c"
	out := GenerateCUE(cfg)

	for _, want := range []string{
		`cloud_cli:   "az"`,
		`iac_cli_alt: "tofu"`,
		`root: "/tmp/c"`,
		`default_valid_for: "24h0m0s"`,
		`level: "info"`,
		`color_scheme: "auto"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q in:\n%s", want, out)
		}
	}
}
