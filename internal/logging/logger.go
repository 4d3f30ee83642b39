// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// Library packages log through github.com/rs/zerolog/log; Configure decides
// where that output goes and how it looks.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Environment overrides, applied after Options.
const (
	EnvLogLevel   = "DIAGUTIL_LOG_LEVEL"
	EnvLogNoColor = "DIAGUTIL_LOG_NOCOLOR"
	EnvLogJSON    = "DIAGUTIL_LOG_JSON"
)

// Options describes the logger to build.
type Options struct {
	Level   string    // trace, debug, info, warn, error, off
	NoColor bool      // disable ANSI colors in console output
	JSON    bool      // force JSON output even on a terminal
	Out     io.Writer // defaults to os.Stderr
	App     string    // added as the "app" field when set
}

// Configure builds a logger from opts plus environment overrides, installs
// it as log.Logger and sets the global level. It returns the logger.
func Configure(opts Options) zerolog.Logger {
	applyEnvOverrides(&opts)

	level, ok := ParseLevel(opts.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := New(opts)
	log.Logger = logger
	return logger
}

// New builds a logger without touching global state. Output is a console
// writer when Out is a terminal, JSON otherwise.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer = out
	if !opts.JSON && isTerminal(out) {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if opts.App != "" {
		ctx = ctx.Str("app", opts.App)
	}
	return ctx.Logger()
}

// ParseLevel converts a level name to a zerolog level. The second result is
// false for empty or unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "none", "disabled":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func applyEnvOverrides(opts *Options) {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		if _, ok := ParseLevel(lvl); ok {
			opts.Level = lvl
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		opts.JSON = v
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		opts.NoColor = true
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

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
