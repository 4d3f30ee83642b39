// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/diagutil/internal/spreadsheet"
)

// isolate points the home directory at a fresh temp dir and clears every
// DIAGUTIL_* override so tests do not read the developer's config.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, name := range []string{
		"DIAGUTIL_CODE_PAGE", "DIAGUTIL_CONVERT_BACKEND", "DIAGUTIL_CONVERT_TIMEOUT",
		"DIAGUTIL_CONVERT_RETRIES", "DIAGUTIL_TEMP_DIR", "DIAGUTIL_FRAMEWORK", "DIAGUTIL_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
	return home
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func(id int) {
			defer wg.Done()
			c := Default()
			c.Convert.Retries = id % 5
			SetGlobal(c)
		}(i)

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := ReloadGlobal(); err != nil {
				t.Errorf("ReloadGlobal() error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestConfig_GlobalInitialization(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	cfg := Global()
	require.NotNil(t, cfg)
	assert.Same(t, cfg, Global(), "Global should return the same instance")
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolate(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	custom := Default()
	custom.Framework.MinVersion = "4.7.2"
	SetGlobal(custom)

	assert.Equal(t, "4.7.2", Global().Framework.MinVersion)
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "native", cfg.Convert.Backend)
	assert.Equal(t, spreadsheet.DefaultTimeout, cfg.Convert.Timeout())
	assert.Equal(t, 1, cfg.Convert.Retries)
	assert.Equal(t, "4.8", cfg.Framework.MinVersion)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad code page", func(c *Config) { c.Encoding.CodePage = "klingon-1" }, "encoding.code_page"},
		{"bad backend", func(c *Config) { c.Convert.Backend = "libreoffice" }, "convert.backend"},
		{"zero timeout", func(c *Config) { c.Convert.TimeoutSecs = 0 }, "convert.timeout_secs"},
		{"negative retries", func(c *Config) { c.Convert.Retries = -1 }, "convert.retries"},
		{"too many retries", func(c *Config) { c.Convert.Retries = 11 }, "convert.retries"},
		{"unknown framework", func(c *Config) { c.Framework.MinVersion = "9.9" }, "framework.min_version"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative rate", func(c *Config) { c.Watch.RatePerMinute = -1 }, "watch.rate_per_minute"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var errs ValidateErrors
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Convert.Backend = "nope"
	cfg.Log.Level = "nope"

	var errs ValidateErrors
	require.ErrorAs(t, cfg.Validate(), &errs)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs.Error(), "convert.backend")
	assert.Contains(t, errs.Error(), "log.level")
}

func TestConfig_LoadFromPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[encoding]
code_page = "cp850"

[convert]
backend = "excel"
timeout_secs = 30

[watch]
rate_per_minute = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "cp850", cfg.Encoding.CodePage)
	assert.Equal(t, "excel", cfg.Convert.Backend)
	assert.Equal(t, 30*time.Second, cfg.Convert.Timeout())
	assert.Equal(t, 5, cfg.Watch.RatePerMinute)
	// Untouched keys keep defaults.
	assert.Equal(t, 1, cfg.Convert.Retries)
	assert.Equal(t, "4.8", cfg.Framework.MinVersion)
}

func TestConfig_LoadFromPathInvalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[convert\nbackend="), 0644))
	_, err := LoadFromPath(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[convert]\nbackend = \"word\"\n"), 0644))
	_, err = LoadFromPath(invalid)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = LoadFromPath(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_LoadWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_LoadFromHome(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".diagutil"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".diagutil", "config.toml"),
		[]byte("[framework]\nmin_version = \"4.6.2\"\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4.6.2", cfg.Framework.MinVersion)
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DIAGUTIL_CODE_PAGE", "windows-1250")
	t.Setenv("DIAGUTIL_CONVERT_BACKEND", "excel")
	t.Setenv("DIAGUTIL_CONVERT_TIMEOUT", "45")
	t.Setenv("DIAGUTIL_CONVERT_RETRIES", "not-a-number")
	t.Setenv("DIAGUTIL_FRAMEWORK", "4.7")
	t.Setenv("DIAGUTIL_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "windows-1250", cfg.Encoding.CodePage)
	assert.Equal(t, "excel", cfg.Convert.Backend)
	assert.Equal(t, 45, cfg.Convert.TimeoutSecs)
	assert.Equal(t, 1, cfg.Convert.Retries, "malformed numbers are ignored")
	assert.Equal(t, "4.7", cfg.Framework.MinVersion)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Encoding.CodePage = "cp437"
	cfg.Convert.TempDir = "/var/tmp"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# diagutil configuration file")

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_DefaultPath(t *testing.T) {
	home := isolate(t)

	cfg := Default()
	cfg.Framework.MinVersion = "4.7.2"
	require.NoError(t, Save(cfg))

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, home))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4.7.2", loaded.Framework.MinVersion)
}

func TestConfig_ConverterOptions(t *testing.T) {
	cfg := Default()
	cfg.Convert.Backend = "EXCEL"
	cfg.Convert.Retries = 3

	opts, err := cfg.ConverterOptions()
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.BackendExcel, opts.Backend)
	assert.Equal(t, 3, opts.Retries)
	assert.Equal(t, spreadsheet.DefaultTimeout, opts.Timeout)

	cfg.Convert.Backend = "other"
	_, err = cfg.ConverterOptions()
	assert.ErrorIs(t, err, spreadsheet.ErrUnknownBackend)
}
