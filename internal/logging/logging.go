// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// EnvLogLevel overrides the configured level (debug, info, warn, error).
	EnvLogLevel = "IMPORTCTL_LOG_LEVEL"
	// EnvLogTimestamp toggles timestamps (any strconv.ParseBool value).
	EnvLogTimestamp = "IMPORTCTL_LOG_TIMESTAMP"
	// EnvLogFormat selects text, json or logfmt output.
	EnvLogFormat = "IMPORTCTL_LOG_FORMAT"

	prefix = "importctl"
)

// Profile selects the baseline settings before overrides apply.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options configures the logger. Zero values fall back to the profile.
type Options struct {
	Profile Profile
	// Level is the configured level name; empty keeps the profile default.
	Level string
	// Verbose forces debug level and wins over every other source.
	Verbose bool
	// Writer receives log output; defaults to os.Stderr.
	Writer io.Writer
	// Getenv reads overrides; defaults to os.Getenv.
	Getenv func(string) string
}

// New builds a logger from opts without touching global state.
func New(opts Options) *log.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	level, timestamp := profileDefaults(opts.Profile)
	if lvl, ok := parseLevel(opts.Level); ok {
		level = lvl
	}
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		level = lvl
	}
	if opts.Verbose {
		level = log.DebugLevel
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		timestamp = v
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: timestamp,
		TimeFormat:      time.DateTime,
		Formatter:       parseFormatter(getenv(EnvLogFormat)),
	})
}

// Configure builds a logger and installs it as the slog default.
func Configure(opts Options) *log.Logger {
	logger := New(opts)
	slog.SetDefault(slog.New(logger))
	return logger
}

// ConfigureTests installs the test profile writing to w.
func ConfigureTests(w io.Writer) *log.Logger {
	return Configure(Options{Profile: ProfileTest, Writer: w})
}

func profileDefaults(p Profile) (log.Level, bool) {
	if p == ProfileTest {
		return log.DebugLevel, false
	}
	return log.InfoLevel, true
}

func parseLevel(raw string) (log.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return log.DebugLevel, true
	case "info":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}

func parseFormatter(raw string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
