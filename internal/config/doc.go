// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for diagutil.
//
// # Key Types
//
//   - Config: main configuration structure
//   - EncodingConfig: legacy code page used for text output
//   - ConvertConfig: spreadsheet conversion backend and safeguards
//   - WatchConfig: drop-folder watcher tuning
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DIAGUTIL_*)
//   - ~/.diagutil/config.toml (or the file given with --config)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("config")
//	}
//	timeout := cfg.Convert.Timeout()
package config
