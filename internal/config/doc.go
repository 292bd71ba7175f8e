// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/importctl/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/importctl/config.cue on macOS, %APPDATA%\importctl\config.cue
// on Windows). It names the executable used for each command kind, the cache root the
// command engine writes to, and logging/UI preferences. Every key can be overridden from
// the environment with the IMPORTCTL_ prefix (for example IMPORTCTL_CACHE_ROOT).
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
