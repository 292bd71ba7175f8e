// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/importctl/importctl/internal/config"
	"github.com/importctl/importctl/pkg/platform"
	"github.com/importctl/importctl/pkg/types"
)

func newTestEngine(t *testing.T, opts EngineOptions) *Engine {
	t.Helper()

	if opts.Resolver == nil {
		opts.Resolver = NewResolver(config.DefaultConfig().Executables,
			WithGOOS(platform.Linux), WithGetenv(fixedEnv(nil)), WithSandbox(platform.SandboxNone))
	}
	if opts.CacheRoot == "" {
		opts.CacheRoot = t.TempDir()
	}
	if opts.LoginLock == nil {
		opts.LoginLock = NewLoginLock()
	}
	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func TestBuilder_Summarize(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})

	tests := []struct {
		name string
		b    *Builder
		want string
	}{
		{
			name: "cloud cli gets debug flag",
			b:    e.New(KindCloudCLI).Args("account", "show"),
			want: "az account show --debug",
		},
		{
			name: "explicit debug flag is not duplicated",
			b:    e.New(KindCloudCLI).Args("--debug", "account", "list"),
			want: "az --debug account list",
		},
		{
			name: "file argument shows relative placeholder",
			b:    e.New(KindCloudCLI).Args("graph", "query", "-q").FileArg("queries/q.kql", "Resources"),
			want: "az graph query -q @queries/q.kql --debug",
		},
		{
			name: "arguments needing quotes are quoted",
			b:    e.New(KindIaCCLI).Args("import", "azurerm_resource_group.main", "/subscriptions/x/resourceGroups/my rg"),
			want: "terraform import azurerm_resource_group.main '/subscriptions/x/resourceGroups/my rg'",
		},
		{
			name: "empty argument is visible",
			b:    e.New(KindEcho).Arg(""),
			want: "echo ''",
		},
		{
			name: "other program",
			b:    e.New(KindOther("jq")).Args(".name", "--raw-output"),
			want: "jq .name --raw-output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.b.Summarize(); got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}
			if got := tt.b.Summarize(); got != tt.want {
				t.Errorf("Summarize() is not deterministic: %q", got)
			}
		})
	}
}

func TestBuilder_FileArgRequiresCloudCLI(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})

	b := e.New(KindIaCCLI).FileArg("plan.json", "{}")
	if !errors.Is(b.Err(), ErrFileArgNotSupported) {
		t.Fatalf("Err() = %v, want ErrFileArgNotSupported", b.Err())
	}
	if _, err := b.RunRaw(t.Context()); !errors.Is(err, ErrFileArgNotSupported) {
		t.Errorf("RunRaw() = %v, want ErrFileArgNotSupported", err)
	}

	switched := e.New(KindCloudCLI).FileArg("body.json", "{}").UseKind(KindShell)
	var kindErr *FileArgKindError
	if !errors.As(switched.Err(), &kindErr) {
		t.Fatalf("switching kind away from cloud-cli should fail, got %v", switched.Err())
	}
	if kindErr.Kind != KindShell || kindErr.Path != "body.json" {
		t.Errorf("FileArgKindError = %+v", kindErr)
	}
}

func TestBuilder_RecordsFirstError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})

	b := e.New(KindCloudCLI).
		FileArg("context.txt", "shadow").
		UseRetryBehaviour("sometimes").
		UseCacheDir("..")

	if b.Err() == nil || !strings.Contains(b.Err().Error(), "reserved") {
		t.Errorf("Err() = %v, want the reserved file argument error", b.Err())
	}

	if err := e.New("docker").Err(); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("New(docker).Err() = %v, want ErrInvalidKind", err)
	}
}

func TestBuilder_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})

	base := e.New(KindCloudCLI).
		Args("group", "list").
		FileArg("q.kql", "one").
		Env("AZURE_CORE_OUTPUT", "json").
		UseCacheDir("groups").
		SendStdin("input")

	clone := base.Clone().
		Arg("--all").
		FileArg("q2.kql", "two").
		Env("AZURE_CORE_OUTPUT", "table").
		UseRetryBehaviour(RetryBehaviourFail)
	clone.cache.ValidFor = 0
	*clone.stdin = "changed"

	if got := base.Summarize(); got != "az group list @q.kql --debug" {
		t.Errorf("base summary changed: %q", got)
	}
	if len(base.fileArgs) != 1 {
		t.Errorf("base file args = %d, want 1", len(base.fileArgs))
	}
	if base.env["AZURE_CORE_OUTPUT"] != "json" {
		t.Error("base environment changed")
	}
	if base.retry != RetryBehaviourRetry {
		t.Error("base retry behaviour changed")
	}
	if !base.cache.active() {
		t.Error("base cache behaviour changed")
	}
	if *base.stdin != "input" {
		t.Error("base stdin changed")
	}
}

func TestBuilder_BustWithoutCache(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})
	if err := e.New(KindCloudCLI).Bust(); !errors.Is(err, ErrCacheNotConfigured) {
		t.Errorf("Bust() = %v, want ErrCacheNotConfigured", err)
	}
}

func TestBuilder_Defaults(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})
	b := e.New(KindCloudCLI)
	if b.retry != RetryBehaviourRetry || b.output != OutputBehaviourCapture {
		t.Errorf("defaults = %s/%s, want retry/capture", b.retry, b.output)
	}
	if b.cache != nil || b.timeout != 0 || b.announce {
		t.Error("cache, timeout and announce must default to off")
	}

	b.UseCacheDir("accounts")
	if b.cache.ValidFor != DefaultCacheValidity {
		t.Errorf("UseCacheDir validity = %s, want %s", b.cache.ValidFor, DefaultCacheValidity)
	}
}

func TestBuilder_UseCacheBehaviourSanitizesLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"embedded whitespace", "my entry", "my_entry"},
		{"parent traversal", "../../x", "x"},
		{"reserved segment", "lookups/nul", filepath.Join("lookups", "_nul")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, EngineOptions{})
			b := e.New(KindEcho).UseCacheBehaviour(&CacheBehaviour{Path: types.RelativePath(tt.path), ValidFor: time.Hour})
			if err := b.Err(); err != nil {
				t.Fatalf("Err() = %v", err)
			}

			dir, ok := b.CacheEntryDir()
			if !ok {
				t.Fatal("CacheEntryDir() reported no cache")
			}
			if want := filepath.Join(e.CacheRoot(), tt.want); dir != want {
				t.Errorf("CacheEntryDir() = %q, want %q", dir, want)
			}

			if err := b.Bust(); err != nil {
				t.Fatalf("Bust() error: %v", err)
			}
			if _, err := os.Stat(filepath.Join(e.CacheRoot(), tt.want, bustedFile)); err != nil {
				t.Errorf("busted marker not under the cache root: %v", err)
			}
		})
	}
}

func TestBuilder_UseCacheBehaviourRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})
	b := e.New(KindEcho).UseCacheBehaviour(&CacheBehaviour{Path: " .. ", ValidFor: time.Hour})
	if !errors.Is(b.Err(), ErrInvalidCachePath) {
		t.Fatalf("Err() = %v, want ErrInvalidCachePath", b.Err())
	}
	if _, ok := b.CacheEntryDir(); ok {
		t.Error("rejected behaviour should leave caching off")
	}
	if err := b.Bust(); !errors.Is(err, ErrInvalidCachePath) {
		t.Errorf("Bust() = %v, want the recorded error", err)
	}
}

func TestBuilder_UseCacheBehaviourNilDisables(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, EngineOptions{})
	b := e.New(KindEcho).UseCacheDir("accounts").UseCacheBehaviour(nil)
	if _, ok := b.CacheEntryDir(); ok {
		t.Error("nil behaviour should disable caching")
	}
}
