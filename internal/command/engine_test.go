// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/importctl/importctl/internal/config"
)

func TestFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Executables.CloudCLI = "az-custom"
	cfg.Cache.Root = config.CacheDirPath(t.TempDir())
	cfg.Cache.DefaultValidFor = 2 * time.Hour

	e, err := FromConfig(cfg, EngineOptions{LoginLock: NewLoginLock()})
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	if got := e.CacheRoot(); got != string(cfg.Cache.Root) {
		t.Errorf("CacheRoot() = %q, want %q", got, cfg.Cache.Root)
	}
	if e.failureRoot != e.CacheRoot() {
		t.Errorf("failure root = %q, want the cache root", e.failureRoot)
	}
	if e.defaultValidity != 2*time.Hour {
		t.Errorf("default validity = %s, want 2h", e.defaultValidity)
	}

	b := e.New(KindCloudCLI).Args("account", "show").UseCacheDir("accounts")
	if got, want := b.Summarize(), "az-custom account show --debug"; got != want {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}
	if b.cache == nil || b.cache.ValidFor != 2*time.Hour {
		t.Errorf("UseCacheDir validity = %+v, want 2h", b.cache)
	}
}

func TestFromConfig_ExplicitOptionsWin(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Cache.Root = config.CacheDirPath(t.TempDir())
	cfg.Cache.DefaultValidFor = 2 * time.Hour

	root := t.TempDir()
	failures := t.TempDir()
	e, err := FromConfig(cfg, EngineOptions{
		CacheRoot:       root,
		FailureRoot:     failures,
		DefaultValidity: time.Minute,
		LoginLock:       NewLoginLock(),
	})
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	if e.CacheRoot() != root || e.failureRoot != failures {
		t.Errorf("roots = %q/%q, want %q/%q", e.CacheRoot(), e.failureRoot, root, failures)
	}
	if e.defaultValidity != time.Minute {
		t.Errorf("default validity = %s, want 1m", e.defaultValidity)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(EngineOptions{CacheRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if e.loginLock != DefaultLoginLock() {
		t.Error("engine should share the process-wide login lock by default")
	}
	if e.defaultValidity != DefaultCacheValidity {
		t.Errorf("default validity = %s, want %s", e.defaultValidity, DefaultCacheValidity)
	}
	if e.terminal.out != os.Stdout || e.terminal.err != os.Stderr || e.terminal.in != os.Stdin {
		t.Error("display streams should default to the process's standard streams")
	}
	if e.clock == nil || e.resolver == nil || e.loginCommand == nil {
		t.Error("clock, resolver and login command must be defaulted")
	}
}

func TestEngine_CacheEntryDirAndBust(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})

	dir, err := e.CacheEntryDir(" lookups/my groups ")
	if err != nil {
		t.Fatalf("CacheEntryDir() error: %v", err)
	}
	if want := filepath.Join(e.CacheRoot(), "lookups", "my_groups"); dir != want {
		t.Errorf("CacheEntryDir() = %q, want %q", dir, want)
	}

	busted, err := e.Bust("lookups/my groups")
	if err != nil {
		t.Fatalf("Bust() error: %v", err)
	}
	if busted != dir {
		t.Errorf("Bust() dir = %q, want %q", busted, dir)
	}
	if _, err := os.Stat(filepath.Join(dir, bustedFile)); err != nil {
		t.Errorf("busted marker missing: %v", err)
	}

	if _, err := e.Bust("../.."); !errors.Is(err, ErrInvalidCachePath) {
		t.Errorf("Bust(../..) error = %v, want ErrInvalidCachePath", err)
	}
}
