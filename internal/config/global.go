// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	// configDirOverride allows tests to override the config directory.
	// os.UserHomeDir() doesn't reliably respect HOME on all platforms
	// (e.g., macOS in CI).
	configDirOverride string
	// cacheDirOverride allows tests to override the cache root.
	cacheDirOverride string

	cachedMu     sync.Mutex
	cachedConfig *Config
)

// Cached returns the configuration loaded once for the process lifetime.
// A failed load is not cached, so the next call retries.
func Cached(ctx context.Context) (*Config, error) {
	cachedMu.Lock()
	defer cachedMu.Unlock()

	if cachedConfig != nil {
		return cachedConfig, nil
	}

	cfg, err := NewProvider().Load(ctx, LoadOptions{})
	if err != nil {
		return nil, err
	}
	cachedConfig = cfg
	return cfg, nil
}

// Reset clears test overrides and the cached configuration. Call from test
// cleanup to restore defaults.
func Reset() {
	cachedMu.Lock()
	defer cachedMu.Unlock()
	configDirOverride = ""
	cacheDirOverride = ""
	cachedConfig = nil
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir().
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetCacheDirOverride sets a custom cache root, taking precedence over
// cache.root and the user cache directory.
func SetCacheDirOverride(dir string) {
	cacheDirOverride = dir
}
