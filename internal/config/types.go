// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug logs every invocation summary and cache decision.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs announced invocations, retries and failures.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs retries and failures only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// DefaultValidFor is the cache validity used by UseCacheDir-style shortcuts.
	DefaultValidFor = 24 * time.Hour
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidExecutableName is returned when an ExecutableName is empty or whitespace-only.
	ErrInvalidExecutableName = errors.New("invalid executable name")
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidCacheConfig is the sentinel error wrapped by InvalidCacheConfigError.
	ErrInvalidCacheConfig = errors.New("invalid cache config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum severity written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ExecutableName is the program name or path launched for a command kind.
	// A valid name must be non-empty and not whitespace-only.
	ExecutableName string

	// InvalidExecutableNameError is returned when an ExecutableName is blank.
	InvalidExecutableNameError struct {
		Field string
		Value ExecutableName
	}

	// CacheDirPath represents a filesystem path to the cache root.
	// The zero value ("") is valid and means "use default cache directory".
	// Non-zero values must not be whitespace-only.
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidCacheConfigError is returned when a CacheConfig has invalid fields.
	InvalidCacheConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Executables maps command kinds to the programs that run them
		Executables ExecutablesConfig `json:"executables" mapstructure:"executables" toml:"executables"`
		// Cache configures where cached command output and failure dumps live
		Cache CacheConfig `json:"cache" mapstructure:"cache" toml:"cache"`
		// Log configures CLI logging
		Log LogConfig `json:"log" mapstructure:"log" toml:"log"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// ExecutablesConfig names the executable for each command kind.
	ExecutablesConfig struct {
		// CloudCLI is the cloud provider CLI (default: az)
		CloudCLI ExecutableName `json:"cloud_cli" mapstructure:"cloud_cli" toml:"cloud_cli"`
		// IaCCLI is the infrastructure-as-code CLI (default: terraform)
		IaCCLI ExecutableName `json:"iac_cli" mapstructure:"iac_cli" toml:"iac_cli"`
		// IaCCLIAlt is the interchangeable IaC CLI selected by IMPORTCTL_USE_TOFU (default: tofu)
		IaCCLIAlt ExecutableName `json:"iac_cli_alt" mapstructure:"iac_cli_alt" toml:"iac_cli_alt"`
		// Editor opens generated files for review (default: code)
		Editor ExecutableName `json:"editor" mapstructure:"editor" toml:"editor"`
		// VCS is the version control client (default: git)
		VCS ExecutableName `json:"vcs" mapstructure:"vcs" toml:"vcs"`
		// Shell runs ad-hoc shell commands (default: sh, pwsh on Windows)
		Shell ExecutableName `json:"shell" mapstructure:"shell" toml:"shell"`
		// Echo is the echo test double (default: echo)
		Echo ExecutableName `json:"echo" mapstructure:"echo" toml:"echo"`
	}

	// CacheConfig configures the on-disk command output cache.
	CacheConfig struct {
		// Root overrides the cache root directory
		Root CacheDirPath `json:"root" mapstructure:"root" toml:"root"`
		// DefaultValidFor is the validity used when a cache dir is set without an explicit duration
		DefaultValidFor time.Duration `json:"default_valid_for" mapstructure:"default_valid_for" toml:"default_valid_for"`
	}

	// LogConfig configures CLI logging.
	LogConfig struct {
		// Level is the minimum level written to stderr
		Level LogLevel `json:"level" mapstructure:"level" toml:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}
)

// Validate returns an error if the ColorScheme is not one of the recognized schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an error if the LogLevel is not one of the recognized levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel so callers can use errors.Is for programmatic detection.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the ExecutableName.
func (n ExecutableName) String() string { return string(n) }

// Validate returns an error if the ExecutableName is empty or whitespace-only.
func (n ExecutableName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return &InvalidExecutableNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidExecutableNameError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid executable for %s %q: must be non-empty", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid executable %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidExecutableName so callers can use errors.Is for programmatic detection.
func (e *InvalidExecutableNameError) Unwrap() error { return ErrInvalidExecutableName }

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// Validate returns an error if the CacheDirPath is non-empty but whitespace-only.
func (p CacheDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidCacheDirPathError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath so callers can use errors.Is for programmatic detection.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

// Validate checks every executable name, tagging errors with the config key.
func (c ExecutablesConfig) Validate() []error {
	fields := []struct {
		key   string
		value ExecutableName
	}{
		{"cloud_cli", c.CloudCLI},
		{"iac_cli", c.IaCCLI},
		{"iac_cli_alt", c.IaCCLIAlt},
		{"editor", c.Editor},
		{"vcs", c.VCS},
		{"shell", c.Shell},
		{"echo", c.Echo},
	}
	var errs []error
	for _, f := range fields {
		if f.value.Validate() != nil {
			errs = append(errs, &InvalidExecutableNameError{Field: "executables." + f.key, Value: f.value})
		}
	}
	return errs
}

// Validate returns an error if the CacheConfig has an invalid root or a
// negative default validity.
func (c CacheConfig) Validate() error {
	var errs []error
	if err := c.Root.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.DefaultValidFor < 0 {
		errs = append(errs, fmt.Errorf("cache.default_valid_for %s must not be negative", c.DefaultValidFor))
	}
	if len(errs) > 0 {
		return &InvalidCacheConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidCacheConfigError) Error() string {
	return fmt.Sprintf("invalid cache config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidCacheConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidCacheConfigError) Unwrap() error { return ErrInvalidCacheConfig }

// Validate returns an error describing every invalid field of the Config.
func (c Config) Validate() error {
	var errs []error
	errs = append(errs, c.Executables.Validate()...)
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.Level.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Executables: ExecutablesConfig{
			CloudCLI:  "az",
			IaCCLI:    "terraform",
			IaCCLIAlt: "tofu",
			Editor:    "code",
			VCS:       "git",
			Shell:     defaultShell(),
			Echo:      "echo",
		},
		Cache: CacheConfig{
			Root:            "", // Will use CacheDir() if empty
			DefaultValidFor: DefaultValidFor,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
