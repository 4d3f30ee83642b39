// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/diagutil/internal/detect"
	"github.com/jeranaias/diagutil/internal/logging"
	"github.com/jeranaias/diagutil/internal/spreadsheet"
	"github.com/jeranaias/diagutil/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete diagutil configuration.
type Config struct {
	Encoding  EncodingConfig  `toml:"encoding" json:"encoding"`
	Convert   ConvertConfig   `toml:"convert" json:"convert"`
	Framework FrameworkConfig `toml:"framework" json:"framework"`
	Log       LogConfig       `toml:"log" json:"log"`
	Watch     WatchConfig     `toml:"watch" json:"watch"`
}

// EncodingConfig selects the code page for legacy text files.
type EncodingConfig struct {
	// CodePage is a code page name ("windows-1252", "cp850", "1252").
	// Empty uses the system ANSI code page.
	CodePage string `toml:"code_page" json:"code_page"`
}

// ConvertConfig controls .xls to .xlsx conversion.
type ConvertConfig struct {
	// Backend is "native" (in-process codec) or "excel" (COM automation).
	Backend string `toml:"backend" json:"backend"`
	// TimeoutSecs bounds each conversion attempt.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// Retries is the number of extra attempts after a failure.
	Retries int `toml:"retries" json:"retries"`
	// TempDir holds Excel's intermediate file (empty = system temp dir).
	TempDir string `toml:"temp_dir" json:"temp_dir"`
}

// FrameworkConfig holds the .NET Framework version the Diagram
// applications require.
type FrameworkConfig struct {
	MinVersion string `toml:"min_version" json:"min_version"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level   string `toml:"level" json:"level"`
	NoColor bool   `toml:"no_color" json:"no_color"`
	JSON    bool   `toml:"json" json:"json"`
}

// WatchConfig tunes the drop-folder watcher.
type WatchConfig struct {
	RatePerMinute int `toml:"rate_per_minute" json:"rate_per_minute"`
	DebounceMs    int `toml:"debounce_ms" json:"debounce_ms"`
}

// Timeout returns TimeoutSecs as a duration.
func (c ConvertConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Debounce returns DebounceMs as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ConverterOptions builds spreadsheet options from the convert section.
func (c *Config) ConverterOptions() (spreadsheet.Options, error) {
	backend, err := spreadsheet.ParseBackend(c.Convert.Backend)
	if err != nil {
		return spreadsheet.Options{}, err
	}
	return spreadsheet.Options{
		Backend: backend,
		Timeout: c.Convert.Timeout(),
		Retries: c.Convert.Retries,
		TempDir: c.Convert.TempDir,
	}, nil
}

// LogOptions builds logging options from the log section.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, NoColor: c.Log.NoColor, JSON: c.Log.JSON}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Backend:     string(spreadsheet.BackendNative),
			TimeoutSecs: int(spreadsheet.DefaultTimeout / time.Second),
			Retries:     1,
		},
		Framework: FrameworkConfig{MinVersion: "4.8"},
		Log:       LogConfig{Level: "info"},
		Watch:     WatchConfig{RatePerMinute: 30, DebounceMs: 500},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the diagutil configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".diagutil"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.diagutil/config.toml when it exists, otherwise the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file. Keys absent
// from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warn().Strs("keys", keys).Str("path", path).Msg("unknown config keys ignored")
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := EncodeTOML(&buf, cfg); err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeTOML writes cfg to w in config file form, header included.
func EncodeTOML(w io.Writer, cfg *Config) error {
	fmt.Fprintln(w, "# diagutil configuration file")
	fmt.Fprintln(w, "")
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies DIAGUTIL_* environment variables. Malformed
// numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DIAGUTIL_CODE_PAGE"); v != "" {
		c.Encoding.CodePage = v
	}
	if v := os.Getenv("DIAGUTIL_CONVERT_BACKEND"); v != "" {
		c.Convert.Backend = v
	}
	if n, ok := envInt("DIAGUTIL_CONVERT_TIMEOUT"); ok {
		c.Convert.TimeoutSecs = n
	}
	if n, ok := envInt("DIAGUTIL_CONVERT_RETRIES"); ok {
		c.Convert.Retries = n
	}
	if v := os.Getenv("DIAGUTIL_TEMP_DIR"); v != "" {
		c.Convert.TempDir = v
	}
	if v := os.Getenv("DIAGUTIL_FRAMEWORK"); v != "" {
		c.Framework.MinVersion = v
	}
	if v := os.Getenv(logging.EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func envInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidateErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := util.CodePageByName(c.Encoding.CodePage); err != nil {
		errs = append(errs, ValidationError{"encoding.code_page", err.Error()})
	}
	if _, err := spreadsheet.ParseBackend(c.Convert.Backend); err != nil {
		errs = append(errs, ValidationError{"convert.backend", `must be "native" or "excel"`})
	}
	if c.Convert.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{"convert.timeout_secs", "must be positive"})
	}
	if c.Convert.Retries < 0 || c.Convert.Retries > 10 {
		errs = append(errs, ValidationError{"convert.retries", "must be between 0 and 10"})
	}
	if c.Framework.MinVersion != "" {
		if _, ok := detect.RequiredRelease(c.Framework.MinVersion); !ok {
			errs = append(errs, ValidationError{"framework.min_version",
				fmt.Sprintf("unknown version %q (known: %s)", c.Framework.MinVersion, strings.Join(detect.Labels(), ", "))})
		}
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		errs = append(errs, ValidationError{"log.level", "must be trace, debug, info, warn, error or off"})
	}
	if c.Watch.RatePerMinute < 0 {
		errs = append(errs, ValidationError{"watch.rate_per_minute", "must not be negative"})
	}
	if c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{"watch.debounce_ms", "must not be negative"})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve ValidateErrors
	return errors.As(err, &ve)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first access.
// A load failure falls back to the defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("config load failed, using defaults")
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the configuration from disk and replaces the global
// instance. On failure the current instance is kept.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
