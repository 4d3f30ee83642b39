// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides the shared helper routines used by the Diagram
// applications.
//
// Every function here is independent and synchronous. Nothing in the package
// holds mutable state; the lookup tables are built once at init.
//
// # Key Functions
//
// Text:
//   - StripAccents: fixed-table accent and mojibake replacement
//   - FoldDiacritics: general Unicode accent folding
//   - SplitPair: attribute=value splitting at the first separator
//
// Files:
//   - DeleteIfExists: delete a file only when it is present
//   - DeleteFamily: delete every "name.*" sibling of a path
//   - WriteLegacyFile, SaveText: write text in a legacy ANSI code page
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	clean := util.StripAccents("Diseño Álvaro")
//	attr, val := util.SplitPair("color = rojo", '=')
//	deleted, err := util.DeleteFamily(`C:\out\diagrama.html`)
//
// Boolean wrappers (SaveText) keep the historical true/false contract and
// report the underlying failure through the structured logger.
package util
