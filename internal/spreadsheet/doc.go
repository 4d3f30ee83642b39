// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package spreadsheet provides Excel file helpers for the Diagram tools.
//
// # Key Types
//
//   - Converter: turns a legacy .xls workbook into .xlsx bytes
//   - NativeConverter: pure Go codec (xlrd reader, excelize writer)
//   - AutomationConverter: drives an installed Excel through COM (Windows)
//   - Guarded: adds a timeout and retries around any Converter
//   - Watcher: converts .xls files dropped into a folder
//
// # Usage
//
//	if spreadsheet.IsExcelFile(path) {
//		data, err := spreadsheet.ConvertToXLSX(ctx, path)
//		...
//	}
//
// The automation backend starts a full Excel process per call and is
// serialized process-wide; prefer the native backend unless a workbook uses
// features the codec does not carry over.
package spreadsheet
