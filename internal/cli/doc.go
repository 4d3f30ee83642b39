// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// diagutil.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global flags
//   - App: Executes commands against a configuration and I/O streams
//   - ArgParser: Per-command flag and positional parsing
//
// # Usage
//
//	os.Exit(cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Stdin))
//
// # Commands Overview
//
// Text: strip, fold, split, write
// Files: rm, rm-family
// Spreadsheets: is-excel, sniff, convert, watch
// Runtime: framework
//
// All commands support the --json flag for scripted use.
package cli
